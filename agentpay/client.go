// Package agentpay is the typed surface of the omniagentpay worker. Every
// method is a thin pass-through to the bridge's generic send primitive: no
// validation, no retries, no transformation. Errors surface exactly as the
// bridge produces them, so callers can match *bridge.RemoteError,
// *bridge.ProcessExitError, and *bridge.LaunchError directly.
package agentpay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omniagentpay/omniagentpay-go/bridge"
)

// Client drives the worker process through a bridge it owns.
type Client struct {
	bridge *bridge.Bridge
}

// New constructs a Client with its own bridge. The worker process starts
// lazily on the first call.
func New(opts ...bridge.Option) (*Client, error) {
	b, err := bridge.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{bridge: b}, nil
}

// NewWithBridge wraps an existing bridge, for hosts that manage the bridge
// lifecycle themselves.
func NewWithBridge(b *bridge.Bridge) *Client {
	return &Client{bridge: b}
}

// Bridge returns the underlying bridge.
func (c *Client) Bridge() *bridge.Bridge { return c.bridge }

// Close stops the worker process. Any in-flight calls are rejected.
func (c *Client) Close() error { return c.bridge.Stop() }

// call sends one request and decodes the result into out, unless out is nil.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	raw, err := c.bridge.Send(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// Health reports the worker's status and version.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.call(ctx, "health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay executes one payment.
func (c *Client) Pay(ctx context.Context, params PayParams) (*PaymentResult, error) {
	var out PaymentResult
	if err := c.call(ctx, "pay", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Simulate predicts the outcome of a payment without moving funds.
func (c *Client) Simulate(ctx context.Context, params PayParams) (*SimulationResult, error) {
	var out SimulationResult
	if err := c.call(ctx, "simulate", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CanPay reports whether a payment would pass the configured guards.
func (c *Client) CanPay(ctx context.Context, params PayParams) (bool, error) {
	var out bool
	if err := c.call(ctx, "can_pay", params, &out); err != nil {
		return false, err
	}
	return out, nil
}

// DetectMethod picks the payment method for a recipient, or "" if none fits.
func (c *Client) DetectMethod(ctx context.Context, recipient string) (PaymentMethod, error) {
	var out *PaymentMethod
	params := map[string]string{"recipient": recipient}
	if err := c.call(ctx, "detect_method", params, &out); err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return *out, nil
}

// BatchPay executes several payments with the given worker-side concurrency.
func (c *Client) BatchPay(ctx context.Context, requests []PayParams, concurrency int) (*BatchResult, error) {
	params := map[string]any{"requests": requests}
	if concurrency > 0 {
		params["concurrency"] = concurrency
	}
	var out BatchResult
	if err := c.call(ctx, "batch_pay", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalance returns a wallet's USDC balance as a decimal string.
func (c *Client) GetBalance(ctx context.Context, walletID string) (string, error) {
	var out string
	if err := c.call(ctx, "get_balance", map[string]string{"wallet_id": walletID}, &out); err != nil {
		return "", err
	}
	return out, nil
}

// CreateWallet creates a wallet inside a wallet set.
func (c *Client) CreateWallet(ctx context.Context, params CreateWalletParams) (*Wallet, error) {
	var out Wallet
	if err := c.call(ctx, "create_wallet", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWalletSet creates a named wallet set.
func (c *Client) CreateWalletSet(ctx context.Context, name string) (*WalletSet, error) {
	var out WalletSet
	if err := c.call(ctx, "create_wallet_set", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWallets lists wallets, optionally filtered.
func (c *Client) ListWallets(ctx context.Context, params ListWalletsParams) ([]Wallet, error) {
	var out []Wallet
	if err := c.call(ctx, "list_wallets", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWalletSets lists every wallet set.
func (c *Client) ListWalletSets(ctx context.Context) ([]WalletSet, error) {
	var out []WalletSet
	if err := c.call(ctx, "list_wallet_sets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWallet fetches one wallet by id.
func (c *Client) GetWallet(ctx context.Context, walletID string) (*Wallet, error) {
	var out Wallet
	if err := c.call(ctx, "get_wallet", map[string]string{"wallet_id": walletID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions lists on-chain transactions, optionally filtered.
func (c *Client) ListTransactions(ctx context.Context, params ListTransactionsParams) ([]Transaction, error) {
	var out []Transaction
	if err := c.call(ctx, "list_transactions", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePaymentIntent pre-authorizes a payment for later confirmation.
func (c *Client) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.call(ctx, "create_payment_intent", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPaymentIntent executes a previously created intent.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, intentID string) (*PaymentResult, error) {
	var out PaymentResult
	if err := c.call(ctx, "confirm_payment_intent", map[string]string{"intent_id": intentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPaymentIntent fetches an intent by id, returning nil if it is unknown.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var out *PaymentIntent
	if err := c.call(ctx, "get_payment_intent", map[string]string{"intent_id": intentID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelPaymentIntent cancels an intent that has not been confirmed.
func (c *Client) CancelPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.call(ctx, "cancel_payment_intent", map[string]string{"intent_id": intentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// withWallet attaches the wallet id the guard methods key on.
func withWallet(walletID string, params any) (map[string]any, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding guard params: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encoding guard params: %w", err)
	}
	m["wallet_id"] = walletID
	return m, nil
}

// withWalletSet attaches the wallet set id the for-set guard methods key on.
func withWalletSet(walletSetID string, params any) (map[string]any, error) {
	m, err := withWallet("", params)
	if err != nil {
		return nil, err
	}
	delete(m, "wallet_id")
	m["wallet_set_id"] = walletSetID
	return m, nil
}

func (c *Client) addGuard(ctx context.Context, method string, params map[string]any, err error) error {
	if err != nil {
		return err
	}
	return c.call(ctx, method, params, nil)
}

// AddBudgetGuard caps a wallet's spend over rolling windows.
func (c *Client) AddBudgetGuard(ctx context.Context, walletID string, params BudgetGuardParams) error {
	p, err := withWallet(walletID, params)
	return c.addGuard(ctx, "add_budget_guard", p, err)
}

// AddBudgetGuardForSet caps spend across every wallet in a set.
func (c *Client) AddBudgetGuardForSet(ctx context.Context, walletSetID string, params BudgetGuardParams) error {
	p, err := withWalletSet(walletSetID, params)
	return c.addGuard(ctx, "add_budget_guard_for_set", p, err)
}

// AddSingleTxGuard bounds the size of any one transaction from a wallet.
func (c *Client) AddSingleTxGuard(ctx context.Context, walletID string, params SingleTxGuardParams) error {
	p, err := withWallet(walletID, params)
	return c.addGuard(ctx, "add_single_tx_guard", p, err)
}

// AddSingleTxGuardForSet bounds transaction size for every wallet in a set.
func (c *Client) AddSingleTxGuardForSet(ctx context.Context, walletSetID string, params SingleTxGuardParams) error {
	p, err := withWalletSet(walletSetID, params)
	return c.addGuard(ctx, "add_single_tx_guard_for_set", p, err)
}

// AddRecipientGuard restricts who a wallet can pay.
func (c *Client) AddRecipientGuard(ctx context.Context, walletID string, params RecipientGuardParams) error {
	p, err := withWallet(walletID, params)
	return c.addGuard(ctx, "add_recipient_guard", p, err)
}

// AddRecipientGuardForSet restricts recipients for every wallet in a set.
func (c *Client) AddRecipientGuardForSet(ctx context.Context, walletSetID string, params RecipientGuardParams) error {
	p, err := withWalletSet(walletSetID, params)
	return c.addGuard(ctx, "add_recipient_guard_for_set", p, err)
}

// AddRateLimitGuard caps how many payments a wallet may run in a window.
func (c *Client) AddRateLimitGuard(ctx context.Context, walletID string, params RateLimitGuardParams) error {
	p, err := withWallet(walletID, params)
	return c.addGuard(ctx, "add_rate_limit_guard", p, err)
}

// AddRateLimitGuardForSet caps payment rate for every wallet in a set.
func (c *Client) AddRateLimitGuardForSet(ctx context.Context, walletSetID string, params RateLimitGuardParams) error {
	p, err := withWalletSet(walletSetID, params)
	return c.addGuard(ctx, "add_rate_limit_guard_for_set", p, err)
}

// AddConfirmGuard requires confirmation for payments above a threshold.
func (c *Client) AddConfirmGuard(ctx context.Context, walletID string, params ConfirmGuardParams) error {
	p, err := withWallet(walletID, params)
	return c.addGuard(ctx, "add_confirm_guard", p, err)
}

// AddConfirmGuardForSet requires confirmation across every wallet in a set.
func (c *Client) AddConfirmGuardForSet(ctx context.Context, walletSetID string, params ConfirmGuardParams) error {
	p, err := withWalletSet(walletSetID, params)
	return c.addGuard(ctx, "add_confirm_guard_for_set", p, err)
}

// ListGuards lists the guard names attached to a wallet.
func (c *Client) ListGuards(ctx context.Context, walletID string) ([]string, error) {
	var out []string
	if err := c.call(ctx, "list_guards", map[string]string{"wallet_id": walletID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListGuardsForSet lists the guard names attached to a wallet set.
func (c *Client) ListGuardsForSet(ctx context.Context, walletSetID string) ([]string, error) {
	var out []string
	if err := c.call(ctx, "list_guards_for_set", map[string]string{"wallet_set_id": walletSetID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncTransaction reconciles one on-chain transaction into the ledger.
func (c *Client) SyncTransaction(ctx context.Context, params SyncTransactionParams) (*LedgerEntry, error) {
	var out LedgerEntry
	if err := c.call(ctx, "sync_transaction", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
