package agentpay

// PaymentMethod is the protocol a payment is routed over.
type PaymentMethod string

const (
	// MethodTransfer is a direct USDC wallet-to-wallet transfer.
	MethodTransfer PaymentMethod = "transfer"
	// MethodX402 pays an HTTP 402 Payment Required endpoint.
	MethodX402 PaymentMethod = "x402"
	// MethodGateway is a cross-chain transfer via a gateway.
	MethodGateway PaymentMethod = "gateway"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// Blockchain identifies the network a wallet lives on.
type Blockchain string

const (
	BlockchainEthereum  Blockchain = "ETH"
	BlockchainBase      Blockchain = "BASE"
	BlockchainArbitrum  Blockchain = "ARB"
	BlockchainPolygon   Blockchain = "MATIC"
	BlockchainSolana    Blockchain = "SOL"
	BlockchainAvalanche Blockchain = "AVAX"
)

// WalletState is the worker-reported state of a wallet.
type WalletState string

const (
	WalletLive   WalletState = "LIVE"
	WalletFrozen WalletState = "FROZEN"
)

// IntentStatus is the lifecycle state of a payment intent.
type IntentStatus string

const (
	IntentCreated   IntentStatus = "created"
	IntentConfirmed IntentStatus = "confirmed"
	IntentCancelled IntentStatus = "cancelled"
)
