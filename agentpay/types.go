package agentpay

// Monetary amounts are decimal strings throughout; the worker serializes its
// decimals as strings to avoid float rounding on the wire.

// PayParams describes one payment.
type PayParams struct {
	WalletID  string         `json:"wallet_id,omitempty"`
	Recipient string         `json:"recipient"`
	Amount    string         `json:"amount"`
	Method    PaymentMethod  `json:"method,omitempty"`
	Purpose   string         `json:"purpose,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PaymentResult is the worker's report of one attempted payment.
type PaymentResult struct {
	Success       bool           `json:"success"`
	TransactionID *string        `json:"transaction_id"`
	BlockchainTx  *string        `json:"blockchain_tx"`
	Amount        *string        `json:"amount"`
	Recipient     string         `json:"recipient"`
	Method        PaymentMethod  `json:"method"`
	Status        PaymentStatus  `json:"status"`
	Error         *string        `json:"error"`
	GuardsPassed  []string       `json:"guards_passed"`
	Metadata      map[string]any `json:"metadata"`
}

// SimulationResult predicts the outcome of a payment without executing it.
type SimulationResult struct {
	WouldSucceed bool    `json:"would_succeed"`
	Route        *string `json:"route"`
	Reason       *string `json:"reason"`
	EstimatedFee *string `json:"estimated_fee"`
}

// BatchResult summarizes a batch of payments.
type BatchResult struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []PaymentResult `json:"results"`
}

// Wallet is a single on-chain wallet.
type Wallet struct {
	ID          string      `json:"id"`
	Address     string      `json:"address"`
	Blockchain  Blockchain  `json:"blockchain"`
	State       WalletState `json:"state"`
	WalletSetID string      `json:"wallet_set_id"`
	CustodyType string      `json:"custody_type"`
	AccountType string      `json:"account_type"`
	CreateDate  *string     `json:"create_date"`
	UpdateDate  *string     `json:"update_date"`
}

// WalletSet groups wallets under one custody arrangement.
type WalletSet struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CustodyType string  `json:"custody_type"`
	CreateDate  *string `json:"create_date"`
	UpdateDate  *string `json:"update_date"`
}

// Transaction is one on-chain transaction involving a wallet.
type Transaction struct {
	ID                 string     `json:"id"`
	State              string     `json:"state"`
	TxHash             *string    `json:"tx_hash"`
	Amounts            []string   `json:"amounts"`
	SourceAddress      string     `json:"source_address"`
	DestinationAddress string     `json:"destination_address"`
	Blockchain         Blockchain `json:"blockchain"`
	FeeLevel           *string    `json:"fee_level"`
	CreateDate         *string    `json:"create_date"`
	UpdateDate         *string    `json:"update_date"`
}

// PaymentIntent is a pre-authorized payment awaiting confirmation.
type PaymentIntent struct {
	ID        string         `json:"id"`
	WalletID  string         `json:"wallet_id"`
	Recipient string         `json:"recipient"`
	Amount    string         `json:"amount"`
	Status    IntentStatus   `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt *string        `json:"created_at"`
	UpdatedAt *string        `json:"updated_at"`
}

// LedgerEntry is one reconciled row of the local payment ledger.
type LedgerEntry struct {
	ID        string         `json:"id"`
	WalletID  string         `json:"wallet_id"`
	Recipient string         `json:"recipient"`
	Amount    string         `json:"amount"`
	Status    PaymentStatus  `json:"status"`
	TxHash    *string        `json:"tx_hash"`
	Purpose   string         `json:"purpose"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt *string        `json:"created_at"`
	UpdatedAt *string        `json:"updated_at"`
}

// HealthStatus is the worker's readiness report.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CreateWalletParams creates a wallet inside a wallet set.
type CreateWalletParams struct {
	WalletSetID string     `json:"wallet_set_id"`
	Blockchain  Blockchain `json:"blockchain,omitempty"`
	Name        string     `json:"name,omitempty"`
}

// ListWalletsParams filters ListWallets.
type ListWalletsParams struct {
	WalletSetID string     `json:"wallet_set_id,omitempty"`
	Blockchain  Blockchain `json:"blockchain,omitempty"`
}

// ListTransactionsParams filters ListTransactions.
type ListTransactionsParams struct {
	WalletID string `json:"wallet_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// CreatePaymentIntentParams pre-authorizes a payment for later confirmation.
type CreatePaymentIntentParams struct {
	WalletID  string         `json:"wallet_id"`
	Recipient string         `json:"recipient"`
	Amount    string         `json:"amount"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BudgetGuardParams caps spend over rolling windows. Limits are decimal
// strings; a nil limit leaves that window unbounded.
type BudgetGuardParams struct {
	DailyLimit  *string `json:"daily_limit,omitempty"`
	HourlyLimit *string `json:"hourly_limit,omitempty"`
	TotalLimit  *string `json:"total_limit,omitempty"`
	Name        string  `json:"name,omitempty"`
}

// SingleTxGuardParams bounds the size of any one transaction.
type SingleTxGuardParams struct {
	MaxAmount string  `json:"max_amount"`
	MinAmount *string `json:"min_amount,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// RecipientGuardParams restricts who can be paid.
type RecipientGuardParams struct {
	Allowed []string `json:"allowed,omitempty"`
	Blocked []string `json:"blocked,omitempty"`
	Name    string   `json:"name,omitempty"`
}

// RateLimitGuardParams caps how many payments may run in a window.
type RateLimitGuardParams struct {
	MaxTransactions int    `json:"max_transactions"`
	WindowSeconds   int    `json:"window_seconds,omitempty"`
	Name            string `json:"name,omitempty"`
}

// ConfirmGuardParams requires out-of-band confirmation above a threshold
// amount; a nil threshold confirms every payment.
type ConfirmGuardParams struct {
	Threshold *string `json:"threshold,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// SyncTransactionParams reconciles one on-chain transaction into the ledger.
type SyncTransactionParams struct {
	WalletID string `json:"wallet_id"`
	TxHash   string `json:"tx_hash"`
}
