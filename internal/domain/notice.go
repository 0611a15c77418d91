package domain

import "time"

// NoticeKind identifies a lending notification
type NoticeKind string

const (
	NoticeReshelve      NoticeKind = "reshelve"
	NoticeLegal         NoticeKind = "legal_notice"
	NoticeLoanFee       NoticeKind = "loan_fee"
	NoticeFirstReminder NoticeKind = "first_reminder"
	NoticeEscalation    NoticeKind = "escalation"
)

// Notice is emitted by entities when a lending event needs to reach staff or borrowers.
type Notice struct {
	Kind     NoticeKind  `json:"kind"`
	ItemCode string      `json:"item_code"`
	Borrower BorrowerKey `json:"borrower,omitempty"`
	Message  string      `json:"message"`
	Day      time.Time   `json:"day"`
}

// Notifier receives notices. Implementations must not call back into the registry.
type Notifier interface {
	Notify(notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(notice Notice)

func (f NotifierFunc) Notify(notice Notice) { f(notice) }

// NopNotifier drops every notice.
var NopNotifier Notifier = NotifierFunc(func(Notice) {})

func notify(n Notifier, notice Notice) {
	if n != nil {
		n.Notify(notice)
	}
}
