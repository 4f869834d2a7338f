package shim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

// Имена действий на проводе.
const (
	ActionFetchAll         = "GET_ALL_DATA"
	ActionAddSubscriber    = "ADD_USER"
	ActionUpdateSubscriber = "UPDATE_USER"
	ActionDeleteSubscriber = "DELETE_USER"
	ActionAddPlan          = "ADD_PRODUCT"
	ActionUpdatePlan       = "UPDATE_PRODUCT"
	ActionDeletePlan       = "DELETE_PRODUCT"
	ActionAddPayment       = "ADD_PAYMENT"
	ActionDeletePayment    = "DELETE_PAYMENT"
)

var aliases = map[string]string{
	"fetch-all":         ActionFetchAll,
	"add-subscriber":    ActionAddSubscriber,
	"update-subscriber": ActionUpdateSubscriber,
	"delete-subscriber": ActionDeleteSubscriber,
	"add-plan":          ActionAddPlan,
	"update-plan":       ActionUpdatePlan,
	"delete-plan":       ActionDeletePlan,
	"add-payment":       ActionAddPayment,
	"delete-payment":    ActionDeletePayment,
}

// CanonicalAction приводит имя действия или его псевдоним к имени на проводе.
// Неизвестное имя возвращается как есть.
func CanonicalAction(action string) string {
	if canon, ok := aliases[strings.ToLower(action)]; ok {
		return canon
	}
	return strings.ToUpper(action)
}

// Command закрытый набор команд шима. Реализации есть только в этом пакете.
type Command interface {
	// Action имя действия на проводе.
	Action() string
	command()
}

// FetchAll читает все три таблицы.
type FetchAll struct{}

// AddSubscriber создаёт абонента.
type AddSubscriber struct{ Input models.SubscriberInput }

// UpdateSubscriber заменяет запись абонента.
type UpdateSubscriber struct{ Update models.SubscriberUpdate }

// DeleteSubscriber удаляет абонента.
type DeleteSubscriber struct{ ID string }

// AddPlan создаёт тариф.
type AddPlan struct{ Input models.PlanInput }

// UpdatePlan заменяет запись тарифа.
type UpdatePlan struct{ Update models.PlanUpdate }

// DeletePlan удаляет тариф.
type DeletePlan struct{ ID string }

// AddPayment регистрирует платёж.
type AddPayment struct{ Input models.PaymentInput }

// DeletePayment удаляет платёж.
type DeletePayment struct{ ID string }

func (FetchAll) Action() string         { return ActionFetchAll }
func (AddSubscriber) Action() string    { return ActionAddSubscriber }
func (UpdateSubscriber) Action() string { return ActionUpdateSubscriber }
func (DeleteSubscriber) Action() string { return ActionDeleteSubscriber }
func (AddPlan) Action() string          { return ActionAddPlan }
func (UpdatePlan) Action() string       { return ActionUpdatePlan }
func (DeletePlan) Action() string       { return ActionDeletePlan }
func (AddPayment) Action() string       { return ActionAddPayment }
func (DeletePayment) Action() string    { return ActionDeletePayment }

func (FetchAll) command()         {}
func (AddSubscriber) command()    {}
func (UpdateSubscriber) command() {}
func (DeleteSubscriber) command() {}
func (AddPlan) command()          {}
func (UpdatePlan) command()       {}
func (DeletePlan) command()       {}
func (AddPayment) command()       {}
func (DeletePayment) command()    {}

// Request запрос к шиму на проводе.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewRequest кодирует команду в запрос.
func NewRequest(cmd Command) (Request, error) {
	const op = "shim.NewRequest"

	var payload any
	switch c := cmd.(type) {
	case FetchAll:
		return Request{Action: c.Action()}, nil
	case AddSubscriber:
		payload = c.Input
	case UpdateSubscriber:
		payload = c.Update
	case DeleteSubscriber:
		payload = models.IDRef{ID: c.ID}
	case AddPlan:
		payload = c.Input
	case UpdatePlan:
		payload = c.Update
	case DeletePlan:
		payload = models.IDRef{ID: c.ID}
	case AddPayment:
		payload = c.Input
	case DeletePayment:
		payload = models.IDRef{ID: c.ID}
	default:
		return Request{}, fmt.Errorf("%s: %w: %T", op, ErrUnknownAction, cmd)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("%s: %w", op, err)
	}
	return Request{Action: cmd.Action(), Payload: raw}, nil
}

// ParseCommand декодирует запрос в команду. Принимает имена действий
// и их псевдонимы в kebab-case.
func ParseCommand(action string, payload json.RawMessage) (Command, error) {
	const op = "shim.ParseCommand"

	var (
		cmd Command
		err error
	)
	switch CanonicalAction(action) {
	case ActionFetchAll:
		cmd = FetchAll{}
	case ActionAddSubscriber:
		var c AddSubscriber
		err = decodePayload(payload, &c.Input)
		cmd = c
	case ActionUpdateSubscriber:
		var c UpdateSubscriber
		err = decodePayload(payload, &c.Update)
		cmd = c
	case ActionDeleteSubscriber:
		var ref models.IDRef
		err = decodePayload(payload, &ref)
		cmd = DeleteSubscriber{ID: ref.ID}
	case ActionAddPlan:
		var c AddPlan
		err = decodePayload(payload, &c.Input)
		cmd = c
	case ActionUpdatePlan:
		var c UpdatePlan
		err = decodePayload(payload, &c.Update)
		cmd = c
	case ActionDeletePlan:
		var ref models.IDRef
		err = decodePayload(payload, &ref)
		cmd = DeletePlan{ID: ref.ID}
	case ActionAddPayment:
		var c AddPayment
		err = decodePayload(payload, &c.Input)
		cmd = c
	case ActionDeletePayment:
		var ref models.IDRef
		err = decodePayload(payload, &ref)
		cmd = DeletePayment{ID: ref.ID}
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownAction, action)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cmd, nil
}

// decodePayload разбирает тело команды. Пустое тело оставляет dst нулевым,
// такие команды отсеиваются валидацией.
func decodePayload(payload json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	return nil
}
