package models

// Status is the workflow state of a submission.
type Status string

const (
	StatusPending    Status = "Pendente"
	StatusReview     Status = "Em Análise"
	StatusFiled      Status = "Ação Protocolada"
	StatusInjunction Status = "Aguardando Liminar"
	StatusCompleted  Status = "Concluído"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusReview,
	StatusFiled,
	StatusInjunction,
	StatusCompleted,
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// AccountStatus is the access state of a lawyer account.
type AccountStatus string

const (
	AccountPending AccountStatus = "Pendente"
	AccountActive  AccountStatus = "Ativo"
	AccountBlocked AccountStatus = "Bloqueado"
)

// AccountStatuses lists every account status.
var AccountStatuses = []AccountStatus{AccountPending, AccountActive, AccountBlocked}

func (s AccountStatus) Valid() bool {
	for _, v := range AccountStatuses {
		if v == s {
			return true
		}
	}
	return false
}
