package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/auth"
)

type options struct {
	baseURL        string
	token          string
	idempotencyKey string
	timeout        time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "creditledger-cli",
		Short:         "Credit ledger CLI tool",
		Long:          `A command line interface for interacting with the credit ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the credit ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CREDITLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key for mutating requests")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		allocateCmd(opts),
		purchaseCmd(opts),
		entriesCmd(opts),
		notificationsCmd(opts),
		reconcileCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

// call runs one request and prints its answer.
func (o *options) call(cmd *cobra.Command, method, path string, body any) error {
	key := ""
	if method != http.MethodGet {
		key = o.idempotencyKey
	}

	data, err := o.client().do(cmd.Context(), method, path, body, key)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), data)
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var req dto.CreateAccountRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, http.MethodPost, "/api/v1/accounts", &req)
		},
	}
	createCmd.Flags().Int64Var(&req.ID, "id", 0, "Account id from the identity system")
	createCmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	createCmd.Flags().StringVar(&req.Role, "role", string(domain.RoleCustomer), "Role: admin, customer or collaborator")
	createCmd.Flags().Int64Var(&req.InitialBalance, "balance", 0, "Initial balance")
	_ = createCmd.MarkFlagRequired("id")
	_ = createCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.call(cmd, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d", id), nil)
		},
	}

	var page dto.PaginationRequest
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, http.MethodGet, "/api/v1/accounts"+pageQuery(page).encode(), nil)
		},
	}
	listCmd.Flags().IntVar(&page.Limit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&page.Offset, "offset", 0, "Page offset")

	cmd.AddCommand(createCmd, getCmd, listCmd)
	return cmd
}

func allocateCmd(opts *options) *cobra.Command {
	var req dto.CreateAllocationRequest
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Move credits from an administrator to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Amount == 0 {
				return fmt.Errorf("--amount must not be zero")
			}
			return opts.call(cmd, http.MethodPost, "/api/v1/allocations", &req)
		},
	}
	cmd.Flags().Int64Var(&req.SourceID, "from", 0, "Administrator account id")
	cmd.Flags().Int64Var(&req.TargetID, "to", 0, "Target account id")
	cmd.Flags().Int64Var(&req.Amount, "amount", 0, "Credits to move; negative takes credits back")
	cmd.Flags().StringVar(&req.Description, "description", "", "Free-form description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func purchaseCmd(opts *options) *cobra.Command {
	var req dto.CreatePurchaseRequest
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record a completed payment and credit the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, http.MethodPost, "/api/v1/purchases", &req)
		},
	}
	cmd.Flags().StringVar(&req.ProviderReference, "reference", "", "Payment provider reference")
	cmd.Flags().StringVar(&req.AmountPaid, "paid", "", "Amount paid, as a decimal")
	cmd.Flags().Int64Var(&req.AccountID, "account", 0, "Account to credit")
	cmd.Flags().Int64Var(&req.Credits, "credits", 0, "Credits to grant; derived from the price when omitted")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("paid")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func entriesCmd(opts *options) *cobra.Command {
	var (
		kinds    []string
		from, to string
		page     dto.PaginationRequest
	)
	cmd := &cobra.Command{
		Use:   "entries <account-id>",
		Short: "List ledger entries of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q := pageQuery(page)
			for _, k := range kinds {
				q.Add("kind", k)
			}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}
			return opts.call(cmd, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d/entries%s", id, q.encode()), nil)
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Entry kinds to include")
	cmd.Flags().StringVar(&from, "from", "", "Earliest entry time, RFC3339")
	cmd.Flags().StringVar(&to, "to", "", "Latest entry time, RFC3339")
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "Page offset")
	return cmd
}

func notificationsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inbox operations",
	}

	var unread bool
	listCmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q := query{url.Values{}}
			if unread {
				q.Set("unread", "true")
			}
			return opts.call(cmd, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/notifications%s", id, q.encode()), nil)
		},
	}
	listCmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")

	readCmd := &cobra.Command{
		Use:   "read <user-id> <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.call(cmd, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/notifications/%s/read", id, url.PathEscape(args[1])), nil)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <user-id> <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.call(cmd, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d/notifications/%s", id, url.PathEscape(args[1])), nil)
		},
	}

	cmd.AddCommand(listCmd, readCmd, deleteCmd)
	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Check balances against entry history",
		Long:  `Reconcile one account, or every account when no id is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return opts.call(cmd, http.MethodGet, "/api/v1/ledger/reconciliation", nil)
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.call(cmd, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d/reconciliation", id), nil)
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		secret    string
		role      string
		accountID int64
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Caller{
				AccountID: accountID,
				Role:      domain.Role(role),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "Role claim")
	cmd.Flags().Int64Var(&accountID, "account", 0, "Account id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

type query struct {
	url.Values
}

func pageQuery(p dto.PaginationRequest) query {
	q := query{url.Values{}}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q
}

func (q query) encode() string {
	if len(q.Values) == 0 {
		return ""
	}
	return "?" + q.Values.Encode()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// printJSON indents a JSON body. An empty body prints "ok".
func printJSON(w io.Writer, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		_, err := fmt.Fprintln(w, "ok")
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
