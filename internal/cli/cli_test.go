package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cessadesk/cessadesk/internal/config"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/oxidb/oxidbtest"
	"github.com/cessadesk/cessadesk/internal/store/storetest"
)

func testConfig(srv *oxidbtest.Server) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":0", PublicURL: "http://cessadesk.test/"},
		Backend: config.BackendConfig{
			Driver:      "sqlite",
			DatabaseURL: ":memory:",
			OxiDB:       config.OxiDBConfig{Host: srv.Host(), Port: srv.Port(), PoolSize: 2},
		},
		Storage: config.StorageConfig{Driver: "oxidb", Bucket: "cessation_documents"},
		Auth: config.AuthConfig{
			JWTSecret:          "wire-test",
			TokenTTL:           time.Hour,
			SuperadminUser:     "admin",
			SuperadminPassword: "s3cret",
		},
		Intake: config.IntakeConfig{Catalog: "default", MaxUploadMB: 5},
	}
}

func TestBuildServesSubmissions(t *testing.T) {
	oxi := oxidbtest.Start(t)
	ctx := context.Background()

	app, err := Build(ctx, testConfig(oxi))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()
	if err := app.Setup(ctx); err != nil {
		t.Fatalf("setup: %v", err)
	}

	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"name": "Maria Silva", "re": "1234567", "email": "m@x.com",
		"phone": "11912345678", "agreedToTerms": "true",
	} {
		mw.WriteField(k, v)
	}
	for slot, name := range map[string]string{"identidade": "re.jpg", "residencia": "conta.pdf", "holerite": "holerite.pdf"} {
		fw, _ := mw.CreateFormFile(slot, name)
		fw.Write([]byte("content of " + name))
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/submissions", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: %d", resp.StatusCode)
	}
	var sub struct {
		ID    string `json:"id"`
		Files []struct {
			URL  string `json:"url"`
			Path string `json:"path"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		t.Fatal(err)
	}
	if sub.ID == "" || len(sub.Files) != 3 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if !strings.HasPrefix(sub.Files[0].URL, "http://cessadesk.test/files/1234567/") {
		t.Fatalf("blob url should use the public base: %s", sub.Files[0].URL)
	}
	if _, ok := oxi.Object("cessation_documents", sub.Files[2].Path); !ok {
		t.Fatal("document not stored in the bucket")
	}

	fresp, err := http.Get(srv.URL + "/files/" + sub.Files[2].Path)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(fresp.Body)
	fresp.Body.Close()
	if fresp.StatusCode != http.StatusOK || string(data) != "content of holerite.pdf" {
		t.Fatalf("proxy: %d %q", fresp.StatusCode, data)
	}

	rows, err := app.Submissions.List(ctx)
	if err != nil || len(rows) != 1 || rows[0].Status != "Pendente" {
		t.Fatalf("list: %v %+v", err, rows)
	}
	if _, err := app.Auth.Authenticate(ctx, "admin", "s3cret"); err != nil {
		t.Fatalf("superadmin login: %v", err)
	}
}

func TestBuildRejectsUnknownCatalog(t *testing.T) {
	cfg := testConfig(oxidbtest.Start(t))
	cfg.Intake.Catalog = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("expected catalog error")
	}
}

func TestUnreachableBackendIsNotConfigError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := testConfig(oxidbtest.Start(t))
	cfg.Backend.OxiDB.Port = port
	_, err = Build(context.Background(), cfg)
	if !errs.Is(err, errs.KindPersistence) {
		t.Fatalf("closed OxiDB port: expected persistence error, got %v (%v)", errs.KindOf(err), err)
	}

	cfg = testConfig(oxidbtest.Start(t))
	cfg.Backend.DatabaseURL = filepath.Join(t.TempDir(), "missing", "dir", "cessa.db")
	_, err = Build(context.Background(), cfg)
	if !errs.Is(err, errs.KindPersistence) {
		t.Fatalf("unopenable sqlite file: expected persistence error, got %v (%v)", errs.KindOf(err), err)
	}
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New()
	c.rootCmd.SetArgs(args)
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&errOut)
	code := c.Execute()
	return code, out.String(), errOut.String()
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := execute(t, "version")
	if code != ExitSuccess || !strings.Contains(out, "Version:    "+Version) {
		t.Fatalf("version: %d %q", code, out)
	}
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CESSA_BACKEND_DRIVER", "sqlite")
	t.Setenv("CESSA_BACKEND_DATABASE_URL", filepath.Join(dir, "cessa.db"))

	code, out, errOut := execute(t, "migrate")
	if code != ExitSuccess {
		t.Fatalf("migrate: %d %s", code, errOut)
	}
	if !strings.Contains(out, "applied 000001") || !strings.Contains(out, "applied 000002") {
		t.Fatalf("unexpected output %q", out)
	}

	code, out, _ = execute(t, "migrate")
	if code != ExitSuccess || !strings.Contains(out, "schema is up to date") {
		t.Fatalf("second run: %d %q", code, out)
	}
}

func TestConfigErrorExitCode(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CESSA_BACKEND_DRIVER", "mysql")

	code, _, errOut := execute(t, "migrate")
	if code != ExitConfig {
		t.Fatalf("expected exit %d, got %d", ExitConfig, code)
	}
	if !strings.Contains(errOut, "CESSA_BACKEND_DRIVER") {
		t.Fatalf("error should name the variable: %q", errOut)
	}
}

func TestMigrateNeedsSQLBackend(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CESSA_BACKEND_DRIVER", "oxidb")

	code, _, errOut := execute(t, "migrate")
	if code != ExitConfig || !strings.Contains(errOut, "no SQL schema") {
		t.Fatalf("expected config failure, got %d %q", code, errOut)
	}
}

func TestSeedSubmissions(t *testing.T) {
	catalog, err := intake.LoadCatalog("judicial")
	if err != nil {
		t.Fatal(err)
	}
	subs := storetest.NewSubmissions()
	var out bytes.Buffer
	if err := seedSubmissions(context.Background(), subs, catalog, 50, rand.New(rand.NewSource(42)), &out); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if subs.Len() != 50 || !strings.Contains(out.String(), "inserted 50 submissions") {
		t.Fatalf("unexpected result %d %q", subs.Len(), out.String())
	}

	rows, _ := subs.List(context.Background())
	for _, s := range rows {
		if !s.Status.Valid() {
			t.Fatalf("invalid status %q", s.Status)
		}
		if len(intake.Digits(s.RE)) != 7 || len(s.Files) != len(catalog.Active(s.IsJudicial)) {
			t.Fatalf("malformed row %+v", s)
		}
		if err := intake.ValidateIdentity(intake.Form{Name: s.Name, RE: s.RE, Email: s.Email, Phone: s.Phone}); err != nil {
			t.Fatalf("seeded identity should validate: %v (%+v)", err, s)
		}
	}
	if rows[0].CreatedAt <= rows[len(rows)-1].CreatedAt {
		t.Fatal("rows should have increasing timestamps")
	}
}
