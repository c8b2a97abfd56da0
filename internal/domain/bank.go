package domain

// Bank is a registered bank.
type Bank struct {
	ID        int64  `json:"id"`
	Name      string `json:"nome"`
	Code      string `json:"codigo"`
	CreatedBy int64  `json:"criado_por"`
}

// BankAccount is an account held at a registered bank.
type BankAccount struct {
	ID        int64  `json:"id"`
	BankID    int64  `json:"id_banco"`
	Branch    string `json:"agencia"`
	Number    string `json:"conta"`
	Active    bool   `json:"status"`
	CreatedBy int64  `json:"criado_por"`
}

// ResponsibleParty is the person answering for a check.
type ResponsibleParty struct {
	ID        int64   `json:"id"`
	Name      string  `json:"nome"`
	Email     *string `json:"email"`
	Active    bool    `json:"status"`
	CreatedBy *int64  `json:"criado_por"`
}

// BlockedDate is a recurring day/month on which checks must not be issued.
type BlockedDate struct {
	ID        int64 `json:"id"`
	Day       int   `json:"dia"`
	Month     int   `json:"mes"`
	CreatedBy int64 `json:"criado_por"`
}
