package model

// Part — строка таблицы, как её отдаёт GET /api/parts.
type Part struct {
	Index       int    `json:"index"`
	Expired     bool   `json:"expired"`
	ETag        string `json:"etag"`
	Region      string `json:"uf"`
	FRU         string `json:"fru"`
	Sub1        string `json:"sub1"`
	Sub2        string `json:"sub2"`
	Sub3        string `json:"sub3"`
	Description string `json:"descricao"`
	Machines    string `json:"maquinas"`
	Client      string `json:"cliente"`
	EndDate     string `json:"data_fim"`
	SLA         string `json:"sla"`
	VerifiedAt  string `json:"data_verificacao"`
	Status      string `json:"status"`
	ClientName  string `json:"nome_cliente"`
	Serial      string `json:"serial"`
}

// NewPart — тело POST /api/parts.
type NewPart struct {
	Region      string `json:"uf"`
	FRU         string `json:"fru"`
	Sub1        string `json:"sub1,omitempty"`
	Sub2        string `json:"sub2,omitempty"`
	Sub3        string `json:"sub3,omitempty"`
	Description string `json:"descricao,omitempty"`
	Machines    string `json:"maquinas,omitempty"`
	ClientName  string `json:"cliente"`
	Serial      string `json:"serial"`
	EndDate     string `json:"data_fim"`
	SLA         string `json:"sla,omitempty"`
}

// Renewal — тело PUT /api/parts/{index}.
type Renewal struct {
	EndDate string `json:"data_fim"`
	SLA     string `json:"sla,omitempty"`
}

// AuditEntry — запись журнала GET /api/logs.
type AuditEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}
