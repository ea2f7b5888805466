// Package console is the interactive terminal surface: the intake wizard
// for officers and the review dashboard for reviewers, driven by typed
// commands over any reader/writer pair.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cessadesk/cessadesk/internal/app"
	"github.com/cessadesk/cessadesk/internal/dashboard"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/service"
)

type Services struct {
	Intake      *service.IntakeService
	Auth        *service.AuthService
	Lawyers     *service.LawyerService
	Submissions *service.SubmissionService
}

type Console struct {
	svc Services
	in  *bufio.Scanner
	out io.Writer

	state  app.State
	wizard *intake.Wizard
	board  *dashboard.Board

	// ReadFile loads attachments; os.ReadFile unless replaced.
	ReadFile func(path string) ([]byte, error)
}

func New(svc Services, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc:      svc,
		in:       bufio.NewScanner(in),
		out:      out,
		state:    app.Initial(),
		wizard:   intake.NewWizard(svc.Intake.Catalog()),
		ReadFile: os.ReadFile,
	}
}

func (c *Console) State() app.State { return c.state }

func (c *Console) dispatch(a app.Action) {
	c.state = app.Reduce(c.state, a)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Run reads commands until "quit" or end of input.
func (c *Console) Run(ctx context.Context) error {
	c.printf("cessadesk console. Type \"help\" for commands.\n")
	c.renderStep()
	for {
		c.printf("%s> ", c.prompt())
		if !c.in.Scan() {
			c.printf("\n")
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if cmd == "help" {
			c.help()
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch c.state.View {
		case app.ViewIntake:
			err = c.intakeCmd(ctx, cmd, rest)
		case app.ViewSuccess:
			err = c.successCmd(cmd)
		case app.ViewLogin:
			err = c.loginCmd(ctx, cmd, rest)
		case app.ViewRegister:
			err = c.registerCmd(ctx, cmd, rest)
		case app.ViewDashboard:
			err = c.dashboardCmd(ctx, cmd, rest)
		}
		if err != nil {
			c.dispatch(app.Failed{Err: err})
		}
		c.report()
		c.dispatch(app.Dismiss{})
	}
}

func (c *Console) prompt() string {
	switch c.state.View {
	case app.ViewIntake:
		return "intake/" + string(c.wizard.Current())
	case app.ViewDashboard:
		p := "dashboard/" + string(c.state.Tab)
		if c.state.Dossier != "" {
			p += "/" + c.state.Dossier
		}
		return p
	default:
		return c.state.View.String()
	}
}

func (c *Console) report() {
	if c.state.Error != "" {
		if c.state.ErrorField != "" {
			c.printf("error [%s]: %s\n", c.state.ErrorField, c.state.Error)
		} else {
			c.printf("error: %s\n", c.state.Error)
		}
	}
	if c.state.Notice != "" {
		c.printf("%s\n", c.state.Notice)
	}
}

func unknown(cmd string) error {
	return errs.Validation("", fmt.Sprintf("unknown command %q, type \"help\"", cmd))
}

func (c *Console) help() {
	switch c.state.View {
	case app.ViewIntake:
		c.printf(`  name <full name>      re <registration>     email <address>
  phone <number>        judicial yes|no       attach <slot> <file>
  agree                 next | back | show    submit
  admin                 quit
`)
	case app.ViewSuccess:
		c.printf("  new    quit\n")
	case app.ViewLogin:
		c.printf("  login <user|oab> <password>    register    cancel    quit\n")
	case app.ViewRegister:
		c.printf("  register <oab> <password> <phone> <full name>    cancel    quit\n")
	case app.ViewDashboard:
		c.printf(`  list                  search <term>         filter <status|all>
  open <id>             close                 file <n>
  status <id> <status>  delete <id>           reload
  tab submissions|lawyers                     logout
  lawyer-status <id> <Pendente|Ativo|Bloqueado>
  lawyer-delete <id>
`)
	}
}

// confirm asks a yes/no question on the same input stream.
func (c *Console) confirm(prompt string) bool {
	c.printf("%s [s/N] ", prompt)
	if !c.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func (c *Console) intakeCmd(ctx context.Context, cmd, rest string) error {
	w := c.wizard
	switch cmd {
	case "name":
		w.SetName(rest)
	case "re":
		w.SetRE(rest)
		c.printf("RE: %s\n", w.Form().RE)
	case "email":
		w.SetEmail(rest)
	case "phone":
		w.SetPhone(rest)
		c.printf("phone: %s\n", w.Form().Phone)
	case "judicial":
		v, err := yesNo(rest)
		if err != nil {
			return errs.Validation("isJudicial", "answer yes or no")
		}
		w.SetJudicial(v)
	case "agree":
		w.SetConsent(true)
	case "attach":
		key, path, ok := strings.Cut(rest, " ")
		if !ok {
			return errs.Validation("", "usage: attach <slot> <file>")
		}
		path = strings.TrimSpace(path)
		data, err := c.ReadFile(path)
		if err != nil {
			return errs.Validation(key, "cannot read "+path)
		}
		if err := w.Attach(key, intake.File{Name: filepath.Base(path), Data: data}); err != nil {
			return err
		}
		c.printf("attached %s\n", filepath.Base(path))
	case "next":
		if err := w.Next(); err != nil {
			return err
		}
		c.renderStep()
	case "back":
		w.Back()
		c.renderStep()
	case "show":
		c.renderStep()
	case "submit":
		return c.submit(ctx)
	case "admin":
		c.dispatch(app.OpenAdmin{})
		if c.state.View == app.ViewLogin {
			c.printf("Reviewer access. login <user|oab> <password>, or register.\n")
		}
	default:
		return unknown(cmd)
	}
	return nil
}

func (c *Console) submit(ctx context.Context) error {
	p, err := c.wizard.Submit()
	if err == nil {
		var sub *models.Submission
		sub, err = c.svc.Intake.SubmitPayload(ctx, p)
		if err == nil {
			c.dispatch(app.Submitted{ID: sub.ID})
			c.printf("protocol: %s\n", sub.ID)
			return nil
		}
	}
	c.dispatch(app.SubmitFailed{Err: err})
	return nil
}

func (c *Console) renderStep() {
	w := c.wizard
	step := w.Current()
	c.printf("step %d/%d: %s\n", w.Index()+1, len(w.Steps()), step)
	switch step {
	case intake.StepIdentification:
		f := w.Form()
		c.printf("  name=%q re=%q email=%q phone=%q\n", f.Name, f.RE, f.Email, f.Phone)
	case intake.StepDocuments, intake.StepStrategy:
		if step == intake.StepStrategy {
			c.printf("  judicial: %t\n", w.Form().IsJudicial)
		}
		for _, s := range w.SlotsForStep(step) {
			mark := " "
			if _, ok := w.Attachment(s.Key); ok {
				mark = "x"
			}
			c.printf("  [%s] %-22s %s\n", mark, s.Key, s.Label)
		}
	case intake.StepConsent:
		c.printf("  agreed: %t (type \"agree\", then \"submit\")\n", w.Form().AgreedToTerms)
	}
}

func (c *Console) successCmd(cmd string) error {
	if cmd != "new" {
		return unknown(cmd)
	}
	c.dispatch(app.NewSubmission{})
	c.wizard = intake.NewWizard(c.svc.Intake.Catalog())
	c.renderStep()
	return nil
}

func (c *Console) loginCmd(ctx context.Context, cmd, rest string) error {
	switch cmd {
	case "login":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return errs.Validation("login", "usage: login <user|oab> <password>")
		}
		p, err := c.svc.Auth.Authenticate(ctx, fields[0], fields[1])
		if err != nil {
			c.dispatch(app.LoginFailed{Err: err})
			return nil
		}
		c.dispatch(app.LoginSucceeded{Principal: p})
		c.board = dashboard.NewBoard(c.svc.Submissions, c.svc.Lawyers, p)
		c.printf("welcome, %s\n", p.Name)
		return c.reload(ctx)
	case "register":
		c.dispatch(app.OpenRegister{})
		c.printf("register <oab> <password> <phone> <full name>\n")
	case "cancel":
		c.dispatch(app.CancelLogin{})
		c.renderStep()
	default:
		return unknown(cmd)
	}
	return nil
}

func (c *Console) registerCmd(ctx context.Context, cmd, rest string) error {
	switch cmd {
	case "register":
		fields := strings.SplitN(rest, " ", 4)
		if len(fields) != 4 {
			return errs.Validation("", "usage: register <oab> <password> <phone> <full name>")
		}
		_, err := c.svc.Lawyers.Register(ctx, service.RegisterRequest{
			OAB:      fields[0],
			Password: fields[1],
			Phone:    fields[2],
			Name:     strings.TrimSpace(fields[3]),
		})
		if err != nil {
			return err
		}
		c.dispatch(app.Registered{})
	case "cancel":
		c.dispatch(app.CancelLogin{})
		c.renderStep()
	default:
		return unknown(cmd)
	}
	return nil
}

func (c *Console) reload(ctx context.Context) error {
	if err := c.board.Load(ctx); err != nil {
		return err
	}
	c.list()
	return nil
}

func (c *Console) dashboardCmd(ctx context.Context, cmd, rest string) error {
	b := c.board
	switch cmd {
	case "list":
		c.list()
	case "reload":
		return c.reload(ctx)
	case "search":
		b.Query.Term = rest
		c.list()
	case "filter":
		if rest == "" || rest == dashboard.AllStatuses {
			b.Query.Status = dashboard.AllStatuses
		} else {
			st, err := parseStatus(rest)
			if err != nil {
				return err
			}
			b.Query.Status = string(st)
		}
		c.list()
	case "tab":
		tab := app.Tab(rest)
		if tab == app.TabLawyers && !c.state.Superadmin() {
			return errs.Forbidden("only the superadmin may manage accounts")
		}
		c.dispatch(app.SwitchTab{Tab: tab})
		c.list()
	case "open":
		if _, ok := b.Find(rest); !ok {
			return errs.NotFound("submission")
		}
		c.dispatch(app.OpenDossier{ID: rest})
		c.dossier()
	case "close":
		c.dispatch(app.CloseDossier{})
	case "file":
		if c.state.Dossier == "" {
			return errs.Validation("", "open a submission first")
		}
		idx, err := strconv.Atoi(rest)
		if err != nil {
			return errs.Validation("", "usage: file <n>")
		}
		a, err := c.svc.Submissions.Attachment(ctx, c.state.Dossier, idx)
		if err != nil {
			return err
		}
		c.printf("%s\n", a.URL)
	case "status":
		id, raw, _ := strings.Cut(rest, " ")
		st, err := parseStatus(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		if err := b.SetStatus(ctx, id, st); err != nil {
			return err
		}
		c.printf("%s -> %s\n", id, st)
	case "delete":
		done, err := b.Delete(ctx, rest, c.confirm)
		if err != nil {
			return err
		}
		if done {
			if c.state.Dossier == rest {
				c.dispatch(app.CloseDossier{})
			}
			c.printf("deleted %s\n", rest)
		}
	case "lawyer-status":
		id, raw, _ := strings.Cut(rest, " ")
		st := models.AccountStatus(strings.TrimSpace(raw))
		if !st.Valid() {
			return errs.Validation("status", "unknown account status "+strconv.Quote(string(st)))
		}
		if err := b.SetLawyerStatus(ctx, id, st); err != nil {
			return err
		}
		c.printf("%s -> %s\n", id, st)
	case "lawyer-delete":
		done, err := b.DeleteLawyer(ctx, rest, c.confirm)
		if err != nil {
			return err
		}
		if done {
			c.printf("deleted %s\n", rest)
		}
	case "logout":
		c.dispatch(app.Logout{})
		c.board = nil
		c.wizard = intake.NewWizard(c.svc.Intake.Catalog())
		c.renderStep()
	default:
		return unknown(cmd)
	}
	return nil
}

func (c *Console) list() {
	if c.state.Tab == app.TabLawyers {
		for _, l := range c.board.Lawyers() {
			c.printf("  %-6s %-10s %-12s %s\n", l.ID, l.OAB, l.Status, l.Name)
		}
		c.printf("%d account(s)\n", len(c.board.Lawyers()))
		return
	}
	rows := c.board.Visible()
	for _, s := range rows {
		c.printf("  %-6s %-10s %-20s %s\n", s.ID, s.RE, s.Status, s.Name)
	}
	c.printf("%d of %d submission(s)\n", len(rows), len(c.board.Rows()))
}

func (c *Console) dossier() {
	s, _ := c.board.Find(c.state.Dossier)
	c.printf("  %s  RE %s  %s\n", s.Name, s.RE, s.Status)
	c.printf("  %s  %s  judicial=%t  created %s\n", s.Email, s.Phone, s.IsJudicial, s.CreatedAt)
	for i, f := range s.Files {
		c.printf("  %d. [%s] %s: %s\n", i, f.Category, f.Label, f.Name)
	}
}

// parseStatus accepts a status name or its 1-based position in the
// workflow.
func parseStatus(raw string) (models.Status, error) {
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(models.Statuses) {
		return models.Statuses[n-1], nil
	}
	st := models.Status(raw)
	if !st.Valid() {
		return "", errs.Validation("status", "unknown status "+strconv.Quote(raw))
	}
	return st, nil
}

func yesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "sim", "s", "true":
		return true, nil
	case "no", "n", "nao", "não", "false":
		return false, nil
	}
	return false, fmt.Errorf("not a yes/no answer: %q", s)
}
