package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/currency"
	"github.com/wau-ai/wau-cli/internal/output"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/wallet"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

// Register command flags
var (
	registerFromFile  string
	registerSets      []string
	registerNoWait    bool
	registerDirect    bool
	registerYes       bool
	registerDeadline  time.Duration
	keystorePath      string
	walletKey         string
	solanaKeypairPath string
)

var registerCmd = &cobra.Command{
	Use:   "register [url]",
	Short: "Register an agent and follow its security audit",
	Long: `Register an agent with the WAU registry.

This command:
  1. Discovers the agent card (or reads it from --from-file)
  2. Applies --set edits to the form
  3. Submits the registration, optionally signed by a publisher wallet
  4. Follows the audit task until it reports a trust score or a failure

Editable fields: name, description, version, url, capabilities, tags,
price, currency, sla, domain, authentication.type, privacy.dataRetention,
metadata.author and friends. List fields take comma separated values.

Exit codes:
  0  registered (or submitted with --no-wait)
  1  registration or audit failed
  2  invalid input (missing name/description, bad --set)
  3  network error
  4  invalid agent card
  6  agent already registered
  7  audit did not finish before --poll-deadline

Examples:
  # Discover and register
  wau register https://agent.example.com

  # Register from a local card, overriding fields
  wau register --from-file agent.yaml --set domain=Finance --set tags=defi,risk

  # Sign the registration with an EVM keystore
  wau register https://agent.example.com --keystore ~/.foundry/keystores/publisher

  # Sign with a hex key piped on stdin
  pass show wau/publisher | wau register https://agent.example.com

  # Submit and return immediately
  wau register https://agent.example.com --no-wait --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

func init() {
	f := registerCmd.Flags()
	f.StringVarP(&registerFromFile, "from-file", "f", "", "Read the agent card from a JSON or YAML file")
	f.StringArrayVar(&registerSets, "set", nil, "Set a form field, key=value (repeatable)")
	f.BoolVar(&registerNoWait, "no-wait", false, "Return after submission without following the audit")
	f.BoolVar(&registerDirect, "direct", false, "Fetch the card from the agent instead of the registry")
	f.BoolVarP(&registerYes, "yes", "y", false, "Skip the confirmation prompt")
	f.DurationVar(&registerDeadline, "poll-deadline", 0, "Give up following the audit after this long (default from config)")
	f.StringVar(&keystorePath, "keystore", "", "Path to EVM keystore file for signing")
	f.StringVar(&walletKey, "wallet", "", "EVM hex private key for signing (or use "+wallet.EnvPrivateKey+" env)")
	f.StringVar(&solanaKeypairPath, "solana-keypair", "", "Path to Solana keypair file for signing")

	registerCmd.MarkFlagsMutuallyExclusive("keystore", "wallet", "solana-keypair")
	registerCmd.MarkFlagsMutuallyExclusive("from-file", "direct")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if len(args) == 0 && registerFromFile == "" {
		return &ExitError{Code: ExitValidation, Err: errors.New("an agent url or --from-file is required")}
	}

	signer, err := loadSigner(cmd.InOrStdin())
	if err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	var opts []registry.Option
	if signer != nil {
		opts = append(opts, registry.WithSigner(signer))
		logger.Debug("signing registration", "publisher", signer.Publisher(), "scheme", signer.Scheme())
		if GetVerbose() && !GetJSONOutput() {
			output.PrintInfo(fmt.Sprintf("Signing as %s (%s)", currency.FormatShortAddress(signer.Publisher()), signer.Scheme()))
		}
	}

	deadline := cfg.Poll.Deadline
	if registerDeadline > 0 {
		deadline = registerDeadline
	}
	ctrl := newController(newRegistry(opts...), deadline, logger)
	defer ctrl.Close()

	result := &output.RegisterResult{Logs: []workflow.LogEntry{}}
	if len(args) > 0 {
		result.URL = args[0]
	}

	if code, err := prepareForm(ctx, ctrl, args); err != nil {
		return finishRegister(cmd, ctrl, result, code, err)
	}

	st := ctrl.State()
	if st.Form.Currency != "" && !currency.IsKnown(st.Form.Currency) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unknown currency %q; the price is submitted without conversion", st.Form.Currency))
	}

	if !registerYes && !GetJSONOutput() && output.CanPrompt() {
		w := cmd.OutOrStdout()
		output.PrintForm(w, &st.Form, GetVerbose())
		fmt.Fprintln(w)
		if !output.PromptConfirm(cmd.InOrStdin(), "Submit registration?") {
			return &ExitError{Code: ExitFailure, Err: errors.New("registration cancelled")}
		}
	}

	err = ctrl.Submit(ctx)
	if err == nil && !registerNoWait {
		err = ctrl.Wait(ctx)
	}
	if err != nil && ctx.Err() != nil {
		if id := ctrl.State().TaskID; id != "" {
			output.PrintWarning(fmt.Sprintf("Interrupted. The registration was already submitted; follow it with: wau status %s --watch", id))
		}
	}
	return finishRegister(cmd, ctrl, result, classify(err), err)
}

// prepareForm brings the controller to the confirm step and applies the
// --set edits.
func prepareForm(ctx context.Context, ctrl *workflow.Controller, args []string) (int, error) {
	switch {
	case registerFromFile != "":
		form, err := agentcard.LoadFile(registerFromFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ExitValidation, err
			}
			return classify(err), err
		}
		if len(args) > 0 && strings.TrimSpace(form.URL) == "" {
			form.URL = args[0]
		}
		if err := ctrl.Load(form, workflow.SourceFile); err != nil {
			return classify(err), err
		}

	case registerDirect:
		res := discoverDirectly(ctx, args[0], "")
		if res.ExitCode != ExitOK {
			return res.ExitCode, errors.New(res.Error)
		}
		form := *res.Form
		if strings.TrimSpace(form.URL) == "" {
			form.URL = args[0]
		}
		if err := ctrl.Load(form, workflow.SourceAgent); err != nil {
			return classify(err), err
		}

	default:
		if err := ctrl.Discover(ctx, args[0]); err != nil {
			return classify(err), err
		}
	}

	for _, kv := range registerSets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return ExitValidation, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		if err := ctrl.Edit(strings.TrimSpace(key), value); err != nil {
			return ExitValidation, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
	}
	return ExitOK, nil
}

// finishRegister renders the final workflow state and derives the exit
// code. A remote task failure yields ExitFailure even though polling
// itself succeeded.
func finishRegister(cmd *cobra.Command, ctrl *workflow.Controller, result *output.RegisterResult, code int, err error) error {
	st := ctrl.State()
	if st.Form.Name != "" || st.Step != workflow.StepDiscovery {
		form := st.Form
		result.Form = &form
	}
	result.Name = st.Form.Name
	if result.Name == "" {
		result.Name = result.URL
	}
	if result.URL == "" {
		result.URL = st.Form.URL
	}
	result.Source = st.Source
	result.AttemptID = st.AttemptID
	result.TaskID = st.TaskID
	result.Status = st.Status
	result.Success = st.Success
	result.Duplicate = st.Duplicate
	result.Logs = st.Logs

	result.Error = st.Error
	if result.Error == "" && err != nil {
		result.Error = err.Error()
	}
	if code == ExitOK && st.Error != "" && !st.Registering {
		code = ExitFailure
	}
	result.ExitCode = code

	w := cmd.OutOrStdout()
	if GetJSONOutput() {
		if err := output.PrintJSON(w, result); err != nil {
			return err
		}
	} else {
		output.PrintRegisterResult(w, result)
		if registerNoWait && code == ExitOK && result.TaskID != "" {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Follow the audit with: wau status %s --watch\n", result.TaskID)
		}
	}

	if code != ExitOK {
		return reported(code, "registration failed")
	}
	return nil
}

// loadSigner returns nil when no key source is configured; registrations
// are then sent unsigned. Without flags or env, a hex key piped to stdin
// is used.
func loadSigner(stdin io.Reader) (wallet.Signer, error) {
	src := wallet.Source{
		Keystore:      keystorePath,
		HexKey:        walletKey,
		SolanaKeypair: solanaKeypairPath,
	}
	if src.Empty() && os.Getenv(wallet.EnvPrivateKey) == "" {
		if output.IsTerminal(stdin) {
			return nil, nil
		}
		src.Stdin = stdin
	}
	signer, err := wallet.LoadSigner(src)
	if errors.Is(err, wallet.ErrEmptyInput) && src.Stdin != nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publisher key: %w", err)
	}
	return signer, nil
}
