package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pyama86/snowpanel/domain/entity"
	"github.com/pyama86/snowpanel/domain/repository"
)

// 利用者に表示する通知文言
const (
	NoticeInserted     = "Incident inserted successfully!"
	NoticeUpdated      = "Incident updated successfully!"
	NoticeSaveFailed   = "Failed to save incident."
	NoticeDeleteFailed = "Failed to delete incident."
	NoticeFetchFailed  = "Failed to fetch incidents."
)

var (
	ErrSubmitting      = errors.New("submit already in progress")
	ErrUnknownIncident = errors.New("unknown incident")
)

// Notifier は利用者が閉じるまで残る通知を出す
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateBrowsing
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateBrowsing:
		return "browsing"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Panel は一覧、入力中の内容、編集対象、検索語を持つ。
// 一覧は最後に取得に成功した結果から、その後削除したものを除いたもの
type Panel struct {
	mu         sync.Mutex
	repository repository.Repository
	notifier   Notifier

	incidents  []entity.Incident
	draft      entity.Draft
	editingID  string
	search     string
	loading    bool
	submitting bool
}

func NewPanel(repository repository.Repository) *Panel {
	return &Panel{
		repository: repository,
		notifier:   NotifierFunc(func(string) {}),
		incidents:  []entity.Incident{},
	}
}

// SetNotifier は通知先を設定する
func (p *Panel) SetNotifier(notifier Notifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifier = notifier
}

func (p *Panel) notify(message string) {
	p.mu.Lock()
	n := p.notifier
	p.mu.Unlock()
	n.Notify(message)
}

// Watch はログインのたびに一覧を取得し、ログアウトで状態を破棄する。
// 遷移を処理するたびにonChangeを呼ぶ
func (p *Panel) Watch(ctx context.Context, onChange func()) {
	events := p.repository.Subscribe()
	// 購読と状態確認の間に届いた通知は、処理済みの状態と同じなら読み飛ばす
	last := p.repository.IsAuthenticated()
	if last {
		p.handleTransition(ctx, true, onChange)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case authenticated := <-events:
			if authenticated == last {
				continue
			}
			last = authenticated
			p.handleTransition(ctx, authenticated, onChange)
		}
	}
}

func (p *Panel) handleTransition(ctx context.Context, authenticated bool, onChange func()) {
	if authenticated {
		slog.Info("Session authenticated, loading incidents")
		_ = p.List(ctx)
	} else {
		slog.Info("Session ended, clearing incidents")
		p.reset()
	}
	if onChange != nil {
		onChange()
	}
}

func (p *Panel) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.incidents = []entity.Incident{}
	p.draft = entity.Draft{}
	p.editingID = ""
	p.search = ""
}

// List は一覧をサーバーの内容で置き換える。失敗時は前の一覧を残す
func (p *Panel) List(ctx context.Context) error {
	if !p.repository.IsAuthenticated() {
		return repository.ErrNotAuthenticated
	}

	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	incidents, err := p.repository.Incidents(ctx)
	if err != nil {
		slog.Error("Failed to fetch incidents", slog.Any("err", err))
		p.notify(NoticeFetchFailed)
		return fmt.Errorf("failed to fetch incidents: %w", err)
	}
	if incidents == nil {
		incidents = []entity.Incident{}
	}

	p.mu.Lock()
	p.incidents = incidents
	p.mu.Unlock()
	return nil
}

// Submit は編集対象がなければ作成、あれば更新する。
// 成功したら入力を消して再取得し、失敗したら入力を残す
func (p *Panel) Submit(ctx context.Context) error {
	if !p.repository.IsAuthenticated() {
		return repository.ErrNotAuthenticated
	}

	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return ErrSubmitting
	}
	draft, target := p.draft, p.editingID
	payload, err := draft.Payload()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.submitting = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.submitting = false
		p.mu.Unlock()
	}()

	notice := NoticeInserted
	if target == "" {
		_, err = p.repository.CreateIncident(ctx, payload)
	} else {
		notice = NoticeUpdated
		_, err = p.repository.UpdateIncident(ctx, target, payload)
	}
	if err != nil {
		slog.Error("Save failed", slog.String("target", target), slog.Any("err", err))
		p.notify(NoticeSaveFailed)
		return fmt.Errorf("failed to save incident: %w", err)
	}
	slog.Info("Incident saved", slog.String("target", target))

	p.mu.Lock()
	p.draft = entity.Draft{}
	p.editingID = ""
	p.mu.Unlock()
	p.notify(notice)

	// 更新結果を反映するため、応答を受け取ってから再取得する
	return p.List(ctx)
}

// Delete はサーバーで削除した後、再取得せずに一覧から取り除く
func (p *Panel) Delete(ctx context.Context, id string) error {
	if !p.repository.IsAuthenticated() {
		return repository.ErrNotAuthenticated
	}

	if err := p.repository.DeleteIncident(ctx, id); err != nil {
		slog.Error("Delete failed", slog.String("id", id), slog.Any("err", err))
		p.notify(NoticeDeleteFailed)
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	slog.Info("Incident deleted", slog.String("id", id))

	p.mu.Lock()
	defer p.mu.Unlock()
	incidents := make([]entity.Incident, 0, len(p.incidents))
	for _, inc := range p.incidents {
		if inc.ID != id {
			incidents = append(incidents, inc)
		}
	}
	p.incidents = incidents
	if p.editingID == id {
		p.editingID = ""
		p.draft = entity.Draft{}
	}
	return nil
}

// BeginEdit は一覧のincidentを入力欄にコピーする
func (p *Panel) BeginEdit(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, inc := range p.incidents {
		if inc.ID == id {
			p.draft = entity.DraftFrom(inc)
			p.editingID = id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownIncident, id)
}

func (p *Panel) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editingID = ""
	p.draft = entity.Draft{}
}

func (p *Panel) SetDraft(d entity.Draft) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = d
}

func (p *Panel) Draft() entity.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

func (p *Panel) EditingID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editingID
}

func (p *Panel) SetSearch(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = query
}

func (p *Panel) Search() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.search
}

// Incidents は一覧全体のコピーを返す
func (p *Panel) Incidents() []entity.Incident {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.Incident{}, p.incidents...)
}

// Visible は検索語に一致するものを返す
func (p *Panel) Visible() []entity.Incident {
	p.mu.Lock()
	defer p.mu.Unlock()
	return entity.FilterIncidents(p.incidents, p.search)
}

func (p *Panel) State() State {
	if !p.repository.IsAuthenticated() {
		return StateUnauthenticated
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.submitting:
		return StateSubmitting
	case p.loading:
		return StateLoading
	case p.editingID != "":
		return StateEditing
	}
	return StateBrowsing
}
