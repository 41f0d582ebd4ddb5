package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adammpkins/hreq/internal/config"
	"github.com/adammpkins/hreq/internal/grammar"
	"github.com/adammpkins/hreq/internal/logutil"
	"github.com/adammpkins/hreq/internal/output"
	"github.com/adammpkins/hreq/internal/parser"
	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/runtime"
	"github.com/adammpkins/hreq/internal/session"
	"github.com/adammpkins/hreq/internal/tui"
)

// requestFlags holds the root command's flags.
type requestFlags struct {
	dryRun       bool
	offline      bool
	tui          bool
	verbose      int
	session      string
	pick         string
	timeout      time.Duration
	insecure     bool
	proxy        string
	checkStatus  bool
	pretty       string
	output       string
	download     bool
	printHeaders bool
	data         string
}

// NewCLI builds the hreq command tree writing to stdout and stderr.
func NewCLI(stdout, stderr io.Writer) *cobra.Command {
	var (
		flags      requestFlags
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "hreq [flags] [METHOD] URL [ITEM ...]",
		Short: "Human-friendly HTTP client",
		Args:  cobra.ArbitraryArgs,
		Long:  "hreq builds an HTTP request from a method, a URL and request items.\n\n" + grammar.FormatHelp(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, args, &flags, configPath, stdout)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $HREQ_CONFIG_DIR/config.yaml)")

	f := rootCmd.Flags()
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print the execution plan without sending")
	f.BoolVar(&flags.offline, "offline", false, "Print the raw request without sending")
	f.BoolVar(&flags.tui, "tui", false, "Launch the interactive request builder")
	f.CountVarP(&flags.verbose, "verbose", "v", "Increase log verbosity (-vv for trace)")
	f.StringVar(&flags.session, "session", "", "Load and update a named session for the host")
	f.StringVar(&flags.pick, "pick", "", "Print only what a JSONPath expression selects")
	f.DurationVar(&flags.timeout, "timeout", 0, "Request timeout (default from config)")
	f.BoolVar(&flags.insecure, "insecure", false, "Skip TLS certificate verification")
	f.StringVar(&flags.proxy, "proxy", "", "Proxy URL")
	f.BoolVar(&flags.checkStatus, "check-status", false, "Exit with 3, 4 or 5 on 3xx, 4xx or 5xx responses")
	f.StringVar(&flags.pretty, "pretty", "", "Format output: auto, always or never")
	f.StringVarP(&flags.output, "output", "o", "", "Save the response body to a file or directory")
	f.BoolVarP(&flags.download, "download", "d", false, "Save the response body using the URL's file name")
	f.BoolVar(&flags.printHeaders, "print-headers", false, "Print the response status line and headers")
	f.StringVar(&flags.data, "data", "", "Raw request body; cannot be combined with body items")

	rootCmd.AddCommand(newSessionCmd(stdout, &configPath))
	return rootCmd
}

// loadConfig loads config, from path when given, and installs the default
// logger.
func loadConfig(stderr io.Writer, verbose int, path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if verbose > cfg.Verbosity {
		cfg.Verbosity = verbose
	}
	slog.SetDefault(logutil.NewLogger(stderr, logutil.Level(cfg.Verbosity)))
	return cfg, nil
}

func runRequest(cmd *cobra.Command, args []string, flags *requestFlags, configPath string, stdout io.Writer) error {
	cfg, err := loadConfig(cmd.ErrOrStderr(), flags.verbose, configPath)
	if err != nil {
		return err
	}

	opts := planner.Options{
		Hosts:          cfg.HostRules(),
		DefaultHeaders: cfg.Headers,
		UserAgent:      "hreq/" + version,
		Timeout:        cfg.Timeout,
		Proxy:          flags.proxy,
		Insecure:       flags.insecure,
		CheckStatus:    flags.checkStatus,
		Pretty:         cfg.Pretty,
		Pick:           flags.pick,
		Output:         flags.output,
		Download:       flags.download,
		PrintHeaders:   flags.printHeaders,
	}
	if flags.timeout > 0 {
		opts.Timeout = flags.timeout
	}
	if flags.pretty != "" {
		opts.Pretty = flags.pretty
	}
	if cmd.Flags().Changed("data") {
		data := flags.data
		opts.Data = &data
	}

	if flags.tui || len(args) == 0 {
		return tui.Launch(opts)
	}

	parsed, err := parser.ParseCommand(args)
	if err != nil {
		return err
	}

	var (
		store *session.Store
		sess  *session.Session
	)
	if flags.session != "" {
		store, sess, err = openSession(cfg, parsed.URL, flags.session)
		if err != nil {
			return err
		}
		opts.DefaultHeaders = cfg.Headers.Merge(sess.DefaultHeaders())
		if sess.Scheme == "http" || sess.Scheme == "https" {
			opts.Hosts.SessionScheme = sess.Scheme
		}
	}

	plan, err := planner.Plan(parsed, opts)
	if err != nil {
		return err
	}

	if flags.dryRun {
		formatted, err := output.FormatPlan(plan)
		if err != nil {
			return fmt.Errorf("failed to format plan: %w", err)
		}
		fmt.Fprintln(stdout, string(formatted))
		return nil
	}

	if flags.offline {
		raw, err := runtime.FormatRequest(plan)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, raw)
		return nil
	}

	executor, err := runtime.NewExecutor(plan)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	resp, execErr := executor.Execute(cmd.Context(), plan)
	if resp == nil {
		return execErr
	}

	if sess != nil {
		sess.Update(plan.Headers, resp.Header.Values("Set-Cookie"), resp.Body)
		// An explicitly typed scheme sticks for later bare URLs.
		if strings.Contains(parsed.URL, "://") {
			if u, err := url.Parse(plan.URL); err == nil {
				sess.Scheme = u.Scheme
			}
		}
		if err := store.Save(sess); err != nil {
			return err
		}
	}

	if err := output.WriteResponse(stdout, resp, plan.Output, isTerminal(stdout)); err != nil {
		return err
	}
	return execErr
}

// openSession loads the named session for the request's host, or starts a
// new one.
func openSession(cfg *config.Config, rawURL, name string) (*session.Store, *session.Session, error) {
	resolved, err := planner.ResolveURL(rawURL, cfg.HostRules())
	if err != nil {
		return nil, nil, err
	}
	host, err := session.ExtractHost(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid host: %w", err)
	}

	store := session.NewStore(cfg.SessionDir)
	sess, err := store.Load(host, name)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		slog.Debug("starting new session", "host", host, "name", name)
		sess = session.New(host, name)
	}
	return store, sess, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}

// newSessionCmd builds the session management subcommands.
func newSessionCmd(stdout io.Writer, configPath *string) *cobra.Command {
	var (
		name    string
		asJSON  bool
		verbose int
	)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored sessions",
	}
	sessionCmd.PersistentFlags().StringVar(&name, "name", "default", "Session name")
	sessionCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity")

	storeFor := func(cmd *cobra.Command, rawURL string) (*session.Store, string, error) {
		cfg, err := loadConfig(cmd.ErrOrStderr(), verbose, *configPath)
		if err != nil {
			return nil, "", err
		}
		resolved, err := planner.ResolveURL(rawURL, cfg.HostRules())
		if err != nil {
			return nil, "", err
		}
		host, err := session.ExtractHost(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("invalid host: %w", err)
		}
		return session.NewStore(cfg.SessionDir), host, nil
	}

	showCmd := &cobra.Command{
		Use:   "show URL",
		Short: "Show a session with secrets redacted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, host, err := storeFor(cmd, args[0])
			if err != nil {
				return err
			}
			sess, err := store.Load(host, name)
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}
			if sess == nil {
				fmt.Fprintf(stdout, "No session %q found for %s\n", name, host)
				return nil
			}
			return printSession(stdout, sess, asJSON)
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print the session as JSON without redaction")

	clearCmd := &cobra.Command{
		Use:   "clear URL",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, host, err := storeFor(cmd, args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(host, name); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Session %q cleared for %s\n", name, host)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list URL",
		Short: "List the sessions stored for a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, host, err := storeFor(cmd, args[0])
			if err != nil {
				return err
			}
			names, err := store.List(host)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(stdout, n)
			}
			return nil
		},
	}

	sessionCmd.AddCommand(showCmd, clearCmd, listCmd)
	return sessionCmd
}

// printSession prints a session, redacted unless asJSON is set.
func printSession(w io.Writer, sess *session.Session, asJSON bool) error {
	if asJSON {
		// Machine-friendly JSON output
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	redacted := session.Redact(sess)
	fmt.Fprintf(w, "Session %q for %s:\n", redacted.Name, redacted.Host)
	for _, h := range redacted.Headers {
		fmt.Fprintf(w, "  %s: %s\n", h.Name, h.Value)
	}
	if len(redacted.Cookies) > 0 {
		names := make([]string, 0, len(redacted.Cookies))
		for name := range redacted.Cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "Cookies:")
		for _, name := range names {
			fmt.Fprintf(w, "  %s: ***\n", name)
		}
	}
	if redacted.Authorization != "" {
		fmt.Fprintf(w, "Authorization: %s\n", redacted.Authorization)
	}
	return nil
}
