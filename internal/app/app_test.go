package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"holidaze/internal/app"
	"holidaze/internal/domain"
)

// ---- fakes ----

type fakeAPI struct {
	mu          sync.Mutex
	loginCalls  int
	createCall  int
	lastCreds   domain.LoginCredentials
	lastToken   string
	lastData    domain.EstablishmentData
	lastImage   string
	sent        []domain.EstablishmentData
	auth        domain.AuthPayload
	err         error
	block       chan struct{}
	createBlock chan struct{}
}

func (f *fakeAPI) Login(ctx context.Context, c domain.LoginCredentials) (domain.AuthPayload, error) {
	f.mu.Lock()
	f.loginCalls++
	f.lastCreds = c
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.auth, nil
}

func (f *fakeAPI) CreateEstablishment(ctx context.Context, token string, d domain.EstablishmentData, img domain.Image) error {
	f.mu.Lock()
	f.createCall++
	f.lastToken = token
	f.lastData = d
	f.sent = append(f.sent, d)
	f.mu.Unlock()
	if f.createBlock != nil {
		<-f.createBlock
	}
	b, _ := io.ReadAll(img.Body)
	f.mu.Lock()
	f.lastImage = string(b)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.err
}

func (f *fakeAPI) calls() (login, create int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.createCall
}

// waitFor polls cond until it holds or a second has passed.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type fakeSession struct {
	id    string
	token string

	mu   sync.Mutex
	auth domain.AuthPayload
}

func (s *fakeSession) ID() string    { return s.id }
func (s *fakeSession) Token() string { return s.token }
func (s *fakeSession) SetAuth(ctx context.Context, a domain.AuthPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
	return nil
}

// ---- login ----

func TestLogin_EmptyFieldsNeverCallAPI(t *testing.T) {
	api := &fakeAPI{}
	svc := app.NewAuthService(api)

	errs, err := svc.Login(context.Background(), &fakeSession{id: "s"}, domain.LoginCredentials{Identifier: "", Password: "x"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if errs.Get("identifier") != "Please enter your username/email address" {
		t.Fatalf("unexpected field errors: %+v", errs)
	}
	if api.loginCalls != 0 {
		t.Fatalf("expected no API call, got %d", api.loginCalls)
	}
}

func TestLogin_SuccessStoresExactBody(t *testing.T) {
	body := domain.AuthPayload(`{"jwt":"tok","user":{"id":3}}`)
	api := &fakeAPI{auth: body}
	sess := &fakeSession{id: "s"}
	svc := app.NewAuthService(api)

	errs, err := svc.Login(context.Background(), sess, domain.LoginCredentials{Identifier: "admin", Password: "pw"})
	if err != nil || errs != nil {
		t.Fatalf("unexpected result errs=%v err=%v", errs, err)
	}
	if api.loginCalls != 1 {
		t.Fatalf("expected exactly one call, got %d", api.loginCalls)
	}
	if string(sess.auth) != string(body) {
		t.Fatalf("session auth = %s", sess.auth)
	}
}

func TestLogin_FailureIsGeneric(t *testing.T) {
	api := &fakeAPI{err: errors.New("dial tcp: connection refused")}
	sess := &fakeSession{id: "s"}
	svc := app.NewAuthService(api)

	_, err := svc.Login(context.Background(), sess, domain.LoginCredentials{Identifier: "admin", Password: "pw"})
	if !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
	if sess.auth != nil {
		t.Fatalf("auth must stay unset on failure")
	}
}

func TestLogin_DuplicateSubmitsShareOneCall(t *testing.T) {
	api := &fakeAPI{auth: domain.AuthPayload(`{"jwt":"t"}`), block: make(chan struct{})}
	sess := &fakeSession{id: "same"}
	svc := app.NewAuthService(api)
	creds := domain.LoginCredentials{Identifier: "admin", Password: "pw"}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Login(context.Background(), sess, creds)
		}()
	}
	// let both goroutines reach the flight before releasing it
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		api.mu.Lock()
		n := api.loginCalls
		api.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(api.block)
	wg.Wait()

	if api.loginCalls != 1 {
		t.Fatalf("expected duplicate submits to share a call, got %d", api.loginCalls)
	}
}

func TestLogin_DifferentPasswordsAreNotMerged(t *testing.T) {
	api := &fakeAPI{auth: domain.AuthPayload(`{"jwt":"t"}`), block: make(chan struct{})}
	sess := &fakeSession{id: "same"}
	svc := app.NewAuthService(api)

	var wg sync.WaitGroup
	for _, pw := range []string{"first", "second"} {
		wg.Add(1)
		go func(pw string) {
			defer wg.Done()
			_, _ = svc.Login(context.Background(), sess, domain.LoginCredentials{Identifier: "admin", Password: pw})
		}(pw)
	}
	waitFor(t, func() bool { n, _ := api.calls(); return n == 2 })
	close(api.block)
	wg.Wait()
}

func TestLogin_CancelledCallerStillStoresSession(t *testing.T) {
	body := domain.AuthPayload(`{"jwt":"tok"}`)
	api := &fakeAPI{auth: body}
	sess := &fakeSession{id: "s"}
	svc := app.NewAuthService(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Login(ctx, sess, domain.LoginCredentials{Identifier: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(sess.auth) != string(body) {
		t.Fatalf("session auth = %s", sess.auth)
	}
}

// ---- establishments ----

func draft() domain.EstablishmentDraft {
	return domain.EstablishmentDraft{
		Name:        "Fjord Inn",
		Price:       " 120 ",
		Description: "Cozy",
		Image:       &domain.Image{Filename: "inn.jpg", Body: strings.NewReader("IMG")},
		Hotel:       true,
	}
}

func TestCreate_InvalidNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{}
	svc := app.NewEstablishmentService(api)

	d := draft()
	d.Name, d.Description, d.Price = "", "", "abc"
	errs, err := svc.Create(context.Background(), &fakeSession{id: "s"}, d)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for field, msg := range map[string]string{
		"name":        "Establishment name is required",
		"price":       "Price is required",
		"description": "Description is required",
	} {
		if errs.Get(field) != msg {
			t.Fatalf("field %s: got %q", field, errs.Get(field))
		}
	}
	if api.createCall != 0 {
		t.Fatalf("expected no API call")
	}
}

func TestCreate_SendsPublishAndToken(t *testing.T) {
	api := &fakeAPI{}
	svc := app.NewEstablishmentService(api)

	errs, err := svc.Create(context.Background(), &fakeSession{id: "s", token: "tok"}, draft())
	if err != nil || errs != nil {
		t.Fatalf("unexpected result errs=%v err=%v", errs, err)
	}
	if api.createCall != 1 {
		t.Fatalf("expected one call, got %d", api.createCall)
	}
	want := domain.EstablishmentData{Hotel: true, Name: "Fjord Inn", Price: 120, Description: "Cozy", Status: "publish"}
	if api.lastData != want {
		t.Fatalf("unexpected data: %+v", api.lastData)
	}
	if api.lastToken != "tok" || api.lastImage != "IMG" {
		t.Fatalf("unexpected token/image: %q %q", api.lastToken, api.lastImage)
	}
}

func TestCreate_FailureIsGeneric(t *testing.T) {
	api := &fakeAPI{err: errors.New("bad status 500")}
	svc := app.NewEstablishmentService(api)

	_, err := svc.Create(context.Background(), &fakeSession{id: "s"}, draft())
	if !errors.Is(err, domain.ErrSubmitFailed) {
		t.Fatalf("expected ErrSubmitFailed, got %v", err)
	}
}

func TestPayload_StatusAlwaysPublish(t *testing.T) {
	d := draft()
	d.Price = "75.5"
	p, err := app.Payload(d)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Status != domain.StatusPublish || p.Price != 75.5 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestCreate_SameNameDifferentContentEachReachAPI(t *testing.T) {
	api := &fakeAPI{createBlock: make(chan struct{})}
	svc := app.NewEstablishmentService(api)
	sess := &fakeSession{id: "s", token: "tok"}

	first, second := draft(), draft()
	second.Price, second.Description = "80", "Sea view"

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []domain.EstablishmentDraft{first, second} {
		wg.Add(1)
		go func(i int, d domain.EstablishmentDraft) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), sess, d)
		}(i, d)
	}
	waitFor(t, func() bool { _, n := api.calls(); return n == 2 })
	close(api.createBlock)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	got := map[string]float64{}
	for _, d := range api.sent {
		got[d.Description] = d.Price
	}
	if got["Cozy"] != 120 || got["Sea view"] != 80 {
		t.Fatalf("both drafts must be sent, got %+v", api.sent)
	}
}

func TestCreate_IdenticalDraftsShareOneCall(t *testing.T) {
	api := &fakeAPI{createBlock: make(chan struct{})}
	svc := app.NewEstablishmentService(api)
	sess := &fakeSession{id: "s", token: "tok"}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), sess, draft())
		}(i)
	}
	waitFor(t, func() bool { _, n := api.calls(); return n == 1 })
	// give the second submit time to join the flight
	time.Sleep(20 * time.Millisecond)
	close(api.createBlock)
	wg.Wait()

	if api.createCall != 1 {
		t.Fatalf("expected identical drafts to share a call, got %d", api.createCall)
	}
	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if api.lastImage != "IMG" {
		t.Fatalf("image body = %q", api.lastImage)
	}
}

func TestCreate_CancelledCallerStillSubmits(t *testing.T) {
	api := &fakeAPI{}
	svc := app.NewEstablishmentService(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Create(ctx, &fakeSession{id: "s", token: "tok"}, draft()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if api.createCall != 1 {
		t.Fatalf("expected one call, got %d", api.createCall)
	}
}
