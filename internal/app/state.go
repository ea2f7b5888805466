// Package app owns the session state of the interactive surfaces. Every
// user action is a value, and Reduce is the only way state changes.
package app

import (
	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
)

type View int

const (
	ViewIntake View = iota
	ViewLogin
	ViewRegister
	ViewSuccess
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewSuccess:
		return "success"
	case ViewDashboard:
		return "dashboard"
	default:
		return "intake"
	}
}

type Tab string

const (
	TabSubmissions Tab = "submissions"
	TabLawyers     Tab = "lawyers"
)

const (
	noticeRegistered = "Cadastro enviado! Aguarde a aprovação do administrador para acessar o painel."
	noticeSubmitted  = "Solicitação enviada com sucesso! Nossa equipe entrará em contato."
)

type State struct {
	View      View
	Principal *auth.Principal
	Tab       Tab
	// Dossier is the id of the submission open in the detail view.
	Dossier    string
	Notice     string
	Error      string
	ErrorField string
}

func Initial() State {
	return State{View: ViewIntake, Tab: TabSubmissions}
}

func (s State) Authenticated() bool { return s.Principal != nil }

func (s State) Superadmin() bool { return s.Principal != nil && s.Principal.Superadmin() }

// Action is a user intent or the outcome of a backend call.
type Action interface {
	isAction()
}

type (
	OpenAdmin      struct{}
	CancelLogin    struct{}
	LoginSucceeded struct{ Principal *auth.Principal }
	LoginFailed    struct{ Err error }
	OpenRegister   struct{}
	Registered     struct{}
	Submitted      struct{ ID string }
	SubmitFailed   struct{ Err error }
	NewSubmission  struct{}
	SwitchTab      struct{ Tab Tab }
	OpenDossier    struct{ ID string }
	CloseDossier   struct{}
	Failed         struct{ Err error }
	Dismiss        struct{}
	Logout         struct{}
)

func (OpenAdmin) isAction()      {}
func (CancelLogin) isAction()    {}
func (LoginSucceeded) isAction() {}
func (LoginFailed) isAction()    {}
func (OpenRegister) isAction()   {}
func (Registered) isAction()     {}
func (Submitted) isAction()      {}
func (SubmitFailed) isAction()   {}
func (NewSubmission) isAction()  {}
func (SwitchTab) isAction()      {}
func (OpenDossier) isAction()    {}
func (CloseDossier) isAction()   {}
func (Failed) isAction()         {}
func (Dismiss) isAction()        {}
func (Logout) isAction()         {}

// Reduce returns the state that follows s after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case OpenAdmin:
		s = cleared(s)
		if s.Authenticated() {
			s.View = ViewDashboard
		} else {
			s.View = ViewLogin
		}
	case CancelLogin:
		if s.View == ViewLogin || s.View == ViewRegister {
			s = cleared(s)
			s.View = ViewIntake
		}
	case LoginSucceeded:
		s = cleared(s)
		s.Principal = a.Principal
		s.View = ViewDashboard
		s.Tab = TabSubmissions
		s.Dossier = ""
	case LoginFailed:
		s.View = ViewLogin
		s.Notice = ""
		s = withError(s, a.Err)
	case OpenRegister:
		s = cleared(s)
		s.View = ViewRegister
	case Registered:
		s = cleared(s)
		s.View = ViewLogin
		s.Notice = noticeRegistered
	case Submitted:
		s = cleared(s)
		s.View = ViewSuccess
		s.Notice = noticeSubmitted
	case SubmitFailed:
		// the form keeps its data; only the error changes
		s.View = ViewIntake
		s = withError(s, a.Err)
	case NewSubmission:
		if s.View == ViewSuccess {
			s = cleared(s)
			s.View = ViewIntake
		}
	case SwitchTab:
		if s.View != ViewDashboard {
			break
		}
		if a.Tab == TabLawyers && !s.Superadmin() {
			break
		}
		if a.Tab == TabSubmissions || a.Tab == TabLawyers {
			s.Tab = a.Tab
			s.Dossier = ""
		}
	case OpenDossier:
		if s.View == ViewDashboard && a.ID != "" {
			s.Dossier = a.ID
		}
	case CloseDossier:
		s.Dossier = ""
	case Failed:
		s = withError(s, a.Err)
	case Dismiss:
		// the console acknowledges messages after printing them
		s = cleared(s)
	case Logout:
		return Initial()
	}
	return s
}

func cleared(s State) State {
	s.Notice = ""
	s.Error = ""
	s.ErrorField = ""
	return s
}

func withError(s State, err error) State {
	if err == nil {
		s.Error, s.ErrorField = "", ""
		return s
	}
	s.Error = errs.Message(err)
	s.ErrorField = errs.FieldOf(err)
	return s
}
