package entity

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Draft はフォームの入力中の内容
type Draft struct {
	Impact           string `validate:"required"`
	Urgency          string `validate:"required"`
	ShortDescription string `validate:"required"`
}

// DraftFrom はincidentの編集可能な項目をコピーする
func DraftFrom(inc Incident) Draft {
	return Draft{
		Impact:           LevelLabel(inc.Impact),
		Urgency:          LevelLabel(inc.Urgency),
		ShortDescription: inc.ShortDescription,
	}
}

func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

func (d Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validate draft error: %w", err)
	}
	return nil
}

// Payload は必須チェックの後、impactとurgencyを数値に変換する
func (d Draft) Payload() (Payload, error) {
	if err := d.Validate(); err != nil {
		return Payload{}, err
	}
	impact, err := ParseLevel(d.Impact)
	if err != nil {
		return Payload{}, fmt.Errorf("impact: %w", err)
	}
	urgency, err := ParseLevel(d.Urgency)
	if err != nil {
		return Payload{}, fmt.Errorf("urgency: %w", err)
	}
	return Payload{
		Impact:           impact,
		Urgency:          urgency,
		ShortDescription: d.ShortDescription,
	}, nil
}
