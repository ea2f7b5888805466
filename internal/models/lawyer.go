package models

// Lawyer is a reviewer account. OAB is the digits-only bar number.
type Lawyer struct {
	ID           string        `json:"id,omitempty"`
	OAB          string        `json:"oab"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	PasswordHash string        `json:"passwordHash,omitempty"`
	Status       AccountStatus `json:"status"`
	CreatedAt    string        `json:"createdAt"`
}

type LawyerResponse struct {
	ID        string        `json:"id"`
	OAB       string        `json:"oab"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Status    AccountStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
}

func (l *Lawyer) ToResponse() LawyerResponse {
	return LawyerResponse{
		ID:        l.ID,
		OAB:       l.OAB,
		Name:      l.Name,
		Phone:     l.Phone,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
}
