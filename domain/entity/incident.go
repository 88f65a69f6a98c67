package entity

// Incident はServiceNowのincidentテーブルのレコード
// priorityはimpactとurgencyからサーバー側で算出されるため表示専用
type Incident struct {
	ID               string `json:"sys_id"`
	Number           string `json:"number"`
	Impact           string `json:"impact"`
	Urgency          string `json:"urgency"`
	ShortDescription string `json:"short_description"`
	Priority         string `json:"priority"`
}

// Payload は作成・更新のリクエストボディ
type Payload struct {
	Impact           int    `json:"impact"`
	Urgency          int    `json:"urgency"`
	ShortDescription string `json:"short_description"`
}
