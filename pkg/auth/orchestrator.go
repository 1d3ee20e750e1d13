package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcpkit/mcpkit/pkg/browser"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/vault"
)

var (
	// ErrAuthenticationIncomplete indicates the manual fallback ran and
	// the operator believed login was complete, but the final analysis
	// still reports the site as unauthenticated. Fatal for the run; no
	// automatic retry follows.
	ErrAuthenticationIncomplete = errors.New("authentication incomplete")

	// ErrAuthenticationAborted indicates the operator explicitly gave up
	// during the manual fallback.
	ErrAuthenticationAborted = errors.New("authentication aborted by operator")
)

// Status is the terminal state of an orchestration run.
type Status string

const (
	// StatusNotRequired means the site never demanded authentication.
	StatusNotRequired Status = "not_required"

	// StatusVerified means login completed and was confirmed by analysis.
	StatusVerified Status = "verified"

	// StatusSkipped means the operator chose to proceed unauthenticated.
	// Discovery continues; this is a policy choice, not an error.
	StatusSkipped Status = "skipped"
)

// Result is the outcome of an orchestration run, carrying the final
// page analysis for observability.
type Result struct {
	Status   Status
	Analysis Analysis
}

// PageAnalyzer classifies the current page. *Analyzer implements it.
type PageAnalyzer interface {
	Analyze(ctx context.Context) Analysis
}

// ActionPerformer executes natural-language page instructions.
// *browser.Actor implements it.
type ActionPerformer interface {
	Act(ctx context.Context, instruction string) error
}

// Operator is the human-fallback channel. Notify surfaces a message to
// the operator; ReadLine blocks on a single line of input. The wait is
// unbounded on purpose: login duration is operator-controlled, and the
// operator can always type "abort" to escape.
type Operator interface {
	Notify(message string)
	ReadLine(ctx context.Context) (string, error)
}

// Options configures an Orchestrator run.
type Options struct {
	// TargetURL is the normalized website address being authenticated.
	TargetURL string

	// Domain is the credential and context key for the site.
	Domain string
}

// Orchestrator drives login to completion. Each step degrades
// gracefully to the next rather than aborting on partial failure: a
// misfired click or rejected autofill falls through to the manual
// path, and only the terminal fully-manual step can fail the run.
type Orchestrator struct {
	page     browser.Page
	actor    ActionPerformer
	analyzer PageAnalyzer
	vault    vault.Vault
	operator Operator
	log      *logging.Logger
	opts     Options
}

// NewOrchestrator creates an authentication orchestrator.
func NewOrchestrator(page browser.Page, actor ActionPerformer, analyzer PageAnalyzer, credVault vault.Vault, operator Operator, log *logging.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		page:     page,
		actor:    actor,
		analyzer: analyzer,
		vault:    credVault,
		operator: operator,
		log:      log,
		opts:     opts,
	}
}

// Run walks the authentication state machine against the target site.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if err := o.page.Navigate(o.opts.TargetURL); err != nil {
		return Result{}, fmt.Errorf("failed to navigate to %s: %w", o.opts.TargetURL, err)
	}

	analysis := o.analyzer.Analyze(ctx)
	o.logAnalysis("initial", analysis)

	if !analysis.RequiresAuth {
		return Result{Status: StatusNotRequired, Analysis: analysis}, nil
	}

	analysis = o.clickLoginControl(ctx, analysis)
	if !analysis.RequiresAuth {
		return Result{Status: StatusVerified, Analysis: analysis}, nil
	}

	analysis, verified := o.attemptAutofill(ctx, analysis)
	if verified {
		return Result{Status: StatusVerified, Analysis: analysis}, nil
	}

	return o.manualFallback(ctx, analysis)
}

// clickLoginControl attempts the described login control once, if the
// analyzer found one. Failure is logged and tolerated: a misdescribed
// button must not block the fallback paths. Returns a fresh analysis.
func (o *Orchestrator) clickLoginControl(ctx context.Context, analysis Analysis) Analysis {
	if analysis.LoginButton == "" {
		return analysis
	}

	instruction := fmt.Sprintf("Click the control that starts login: %s", analysis.LoginButton)
	if err := o.actor.Act(ctx, instruction); err != nil {
		o.log.Warnf("login control click failed, continuing: %v", err)
	}

	next := o.analyzer.Analyze(ctx)
	o.logAnalysis("after login click", next)
	return next
}

// attemptAutofill fills stored credentials when available and the page
// is fillable, then re-analyzes. Reports whether login verified.
func (o *Orchestrator) attemptAutofill(ctx context.Context, analysis Analysis) (Analysis, bool) {
	if !analysis.CanAutofill {
		return analysis, false
	}

	creds, found := o.vault.Lookup(o.opts.Domain)
	if !found {
		o.log.Infof("no stored credentials for %s, skipping autofill", o.opts.Domain)
		return analysis, false
	}

	steps := []string{
		fmt.Sprintf("Enter %q into the username or email field", creds.Username),
		fmt.Sprintf("Enter %q into the password field", creds.Password),
		"Click the submit or sign-in button",
	}
	for _, step := range steps {
		if err := o.actor.Act(ctx, step); err != nil {
			o.log.Warnf("autofill step failed, falling through to manual login: %v", err)
			return analysis, false
		}
	}

	// Bounded wait for the post-submit redirect; a timeout is tolerated.
	if err := o.page.WaitForLoad(10 * time.Second); err != nil {
		o.log.Debugf("post-autofill wait timed out: %v", err)
	}

	next := o.analyzer.Analyze(ctx)
	o.logAnalysis("after autofill", next)
	return next, !next.RequiresAuth
}

// manualFallback hands control to the human operator and interprets a
// single line of input.
func (o *Orchestrator) manualFallback(ctx context.Context, analysis Analysis) (Result, error) {
	o.operator.Notify(fmt.Sprintf(
		"Manual login required. Complete sign-in in the browser window (current page: %s), then press Enter. Type \"skip\" to continue without logging in, or \"abort\" to stop.",
		o.page.URL(),
	))

	line, err := o.operator.ReadLine(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("operator input unavailable: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "skip":
		// Deliberate policy choice: discovery proceeds unauthenticated.
		if err := o.page.Navigate(o.opts.TargetURL); err != nil {
			o.log.Warnf("re-navigation after skip failed: %v", err)
		}
		return Result{Status: StatusSkipped, Analysis: analysis}, nil
	case "abort":
		return Result{}, ErrAuthenticationAborted
	}

	final := o.analyzer.Analyze(ctx)
	o.logAnalysis("after manual login", final)

	if final.RequiresAuth {
		return Result{}, fmt.Errorf("%w: site still requires sign-in after manual attempt", ErrAuthenticationIncomplete)
	}
	return Result{Status: StatusVerified, Analysis: final}, nil
}

func (o *Orchestrator) logAnalysis(stage string, analysis Analysis) {
	o.log.Infof("auth analysis (%s): source=%s requiresAuth=%v strategy=%s summary=%s",
		stage, analysis.Source, analysis.RequiresAuth, analysis.RecommendedStrategy, analysis.Summary)
}
