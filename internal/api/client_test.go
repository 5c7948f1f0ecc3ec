package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// newFakeAPI starts an echo server with the given routes and a client for it.
func newFakeAPI(t *testing.T, routes func(e *echo.Echo)) (*Client, *httptest.Server) {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	routes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

// ---------------------------------------------------------------------------
// Client basics
// ---------------------------------------------------------------------------

func TestNewClient_RejectsRelativeBase(t *testing.T) {
	if _, err := NewClient("/api"); err == nil {
		t.Fatalf("expected error for relative base url")
	}
	c, err := NewClient("https://portal.example.com/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.BaseURL() != "https://portal.example.com" {
		t.Fatalf("trailing slash not trimmed: %s", c.BaseURL())
	}
}

func TestClient_Do_NonJSONBodyBecomesEmptyObject(t *testing.T) {
	var gotRequestID string
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/api/dashboard", func(ctx echo.Context) error {
			gotRequestID = ctx.Request().Header.Get(HeaderRequestID)
			return ctx.String(http.StatusBadGateway, "<html>bad gateway</html>")
		})
	})

	resp, err := c.Do(context.Background(), "dashboard", http.MethodGet, "/api/dashboard", nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.Meta.OK || resp.Meta.Status != http.StatusBadGateway {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
	if string(resp.Data) != "{}" {
		t.Fatalf("expected empty object, got %s", resp.Data)
	}
	if gotRequestID == "" || gotRequestID != resp.Meta.RequestID {
		t.Fatalf("request id not propagated: sent %q, meta %q", gotRequestID, resp.Meta.RequestID)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	srv.Close()

	_, err = c.FetchSession(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if got := domain.UserMessage(err, "x"); got != domain.ErrTransport.Error() {
		t.Fatalf("unexpected user message %q", got)
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{name: "code wins", status: http.StatusBadRequest, body: `{"error":"gone","code":"signup_not_found"}`, want: domain.ErrSignupNotFound, msg: "gone"},
		{name: "legacy message", status: http.StatusNotFound, body: `{"error":"signup_id no encontrado"}`, want: domain.ErrSignupNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"role":null}`, want: domain.ErrUnauthorized},
		{name: "conflict", status: http.StatusConflict, body: `{"error":"email ya registrado"}`, want: domain.ErrConflict, msg: "email ya registrado"},
		{name: "server", status: http.StatusInternalServerError, body: `oops`, want: domain.ErrServer},
		{name: "other 4xx", status: http.StatusUnprocessableEntity, body: `{"message":"bad plan"}`, want: domain.ErrRejected, msg: "bad plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newFakeAPI(t, func(e *echo.Echo) {
				e.GET("/api/me", func(ctx echo.Context) error {
					return ctx.Blob(tt.status, echo.MIMEApplicationJSON, []byte(tt.body))
				})
			})
			_, err := c.FetchSession(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ae *domain.APIError
			if !errors.As(err, &ae) || ae.Status != tt.status {
				t.Fatalf("expected APIError with status %d, got %v", tt.status, err)
			}
			if tt.msg != "" && ae.Message != tt.msg {
				t.Fatalf("message = %q, want %q", ae.Message, tt.msg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestClient_Login_SelectRole(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/api/login", func(ctx echo.Context) error {
			return ctx.JSON(http.StatusOK, map[string]any{"select_role": true, "roles": []string{"super_usuario", "cliente", "bogus"}})
		})
	})

	res, err := c.Login(context.Background(), ports.LoginInput{Username: "ana", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.SelectRole || len(res.Roles) != 2 || res.Session != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_Login_SessionCookieIsReused(t *testing.T) {
	var sawRole string
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/api/login", func(ctx echo.Context) error {
			var in map[string]string
			if err := ctx.Bind(&in); err != nil {
				return err
			}
			sawRole = in["role"]
			ctx.SetCookie(&http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return ctx.JSON(http.StatusOK, map[string]any{
				"user":            map[string]any{"tenant_id": 4, "nombre": "Panadería Sol", "logo_url": "https://cdn/l.png"},
				"role":            "microempresa",
				"available_roles": []string{"microempresa", "cliente"},
			})
		})
		e.GET("/api/me", func(ctx echo.Context) error {
			ck, err := ctx.Cookie("session")
			if err != nil || ck.Value != "abc" {
				return ctx.JSON(http.StatusOK, map[string]any{"user": nil, "role": nil, "available_roles": []string{}})
			}
			return ctx.JSON(http.StatusOK, map[string]any{"user": map[string]any{"tenant_id": 4, "nombre": "Panadería Sol"}, "role": "microempresa"})
		})
	})

	res, err := c.Login(context.Background(), ports.LoginInput{Username: "sol", Password: "pw", Role: domain.RoleBusiness})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sawRole != "microempresa" {
		t.Fatalf("role not sent, got %q", sawRole)
	}
	id := res.Session.Identity()
	if id == nil || id.DisplayName() != "Panadería Sol" || id.AvatarURL() != "https://cdn/l.png" || len(id.AvailableRoles) != 2 {
		t.Fatalf("unexpected identity: %+v", id)
	}

	me, err := c.FetchSession(context.Background())
	if err != nil {
		t.Fatalf("FetchSession: %v", err)
	}
	if me.Identity() == nil {
		t.Fatalf("session cookie was not sent back")
	}

	saved := c.Cookies()
	c.ResetCookies()
	if me, _ := c.FetchSession(context.Background()); me.Identity() != nil {
		t.Fatalf("expected anonymous session after cookie reset")
	}
	c.SetCookies(saved)
	if me, _ := c.FetchSession(context.Background()); me.Identity() == nil {
		t.Fatalf("restored cookies should re-establish the session")
	}
}

func TestClient_FetchSession_Anonymous(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/api/me", func(ctx echo.Context) error {
			return ctx.JSONBlob(http.StatusOK, []byte(`{"user":null,"role":null,"available_roles":[]}`))
		})
	})
	p, err := c.FetchSession(context.Background())
	if err != nil {
		t.Fatalf("FetchSession: %v", err)
	}
	if p.Identity() != nil {
		t.Fatalf("expected anonymous payload, got %+v", p)
	}
}

func TestClient_RequestPasswordReset(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/api/password-reset/request", func(ctx echo.Context) error {
			var in map[string]string
			_ = ctx.Bind(&in)
			if in["role"] == "" {
				return ctx.JSON(http.StatusOK, map[string]any{"select_role": true, "roles": []string{"cliente", "microempresa"}})
			}
			return ctx.JSON(http.StatusOK, map[string]any{"message": "token enviado", "role": in["role"]})
		})
	})

	res, err := c.RequestPasswordReset(context.Background(), "a@b.bo", "")
	if err != nil || !res.SelectRole || len(res.Roles) != 2 {
		t.Fatalf("expected role selection, got %+v %v", res, err)
	}
	res, err = c.RequestPasswordReset(context.Background(), "a@b.bo", domain.RoleCustomer)
	if err != nil || res.Message != "token enviado" || res.Role != domain.RoleCustomer {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
}

// ---------------------------------------------------------------------------
// Dashboard and accounts
// ---------------------------------------------------------------------------

func TestClient_FetchDashboard_Shapes(t *testing.T) {
	body := map[string]string{
		"admin":    `{"role":"super_usuario","counts":{"microempresas":2,"clientes":1},"admins":[{"id_su":1,"nombre":"Luis","estado":"activo"}],"microempresas":[{"tenant_id":3,"nombre":"Sol","estado":"pendiente"}],"clientes":[{"id":9,"nombre":"Eva","estado":"inactivo"}]}`,
		"customer": `{"role":"cliente","microempresas":[{"tenant_id":3,"nombre":"Sol","tipo_tienda":"virtual","estado":"activo"}]}`,
	}
	for name, payload := range body {
		t.Run(name, func(t *testing.T) {
			c, _ := newFakeAPI(t, func(e *echo.Echo) {
				e.GET("/api/dashboard", func(ctx echo.Context) error {
					return ctx.JSONBlob(http.StatusOK, []byte(payload))
				})
			})
			d, err := c.FetchDashboard(context.Background())
			if err != nil {
				t.Fatalf("FetchDashboard: %v", err)
			}
			switch d.Role {
			case domain.RoleAdmin:
				if len(d.Businesses) != 1 || d.PendingBusinesses() != 1 || len(d.InactiveCustomers()) != 1 || d.Customers[0].ID != 9 {
					t.Fatalf("unexpected admin dashboard: %+v", d)
				}
			case domain.RoleCustomer:
				if len(d.Shops) != 1 || d.Shops[0].StoreType != domain.StoreVirtual {
					t.Fatalf("unexpected customer dashboard: %+v", d)
				}
			default:
				t.Fatalf("unexpected role %s", d.Role)
			}
		})
	}
}

func TestClient_AccountRoutes(t *testing.T) {
	var hits []string
	record := func(ctx echo.Context) error {
		hits = append(hits, ctx.Request().Method+" "+ctx.Request().URL.Path)
		return ctx.JSON(http.StatusOK, map[string]string{"message": "ok"})
	}
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.DELETE("/api/admins/:id", record)
		e.PATCH("/api/admins/:id/activate", record)
		e.PATCH("/api/microempresas/:id/deactivate", record)
		e.PATCH("/api/clientes/:id/activate", record)
	})
	ctx := context.Background()
	if err := c.DeactivateAdmin(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.ActivateAdmin(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.DeactivateBusiness(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := c.ActivateCustomer(ctx, 9); err != nil {
		t.Fatal(err)
	}
	want := "DELETE /api/admins/2|PATCH /api/admins/2/activate|PATCH /api/microempresas/7/deactivate|PATCH /api/clientes/9/activate"
	if got := strings.Join(hits, "|"); got != want {
		t.Fatalf("routes = %s", got)
	}
}

func TestClient_UpdateCustomer_ReturnsRecord(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.PUT("/api/clientes/:id", func(ctx echo.Context) error {
			var in map[string]any
			_ = ctx.Bind(&in)
			if _, ok := in["password"]; ok {
				t.Errorf("password must not be sent when empty")
			}
			return ctx.JSON(http.StatusOK, map[string]any{"cliente": map[string]any{"id_cliente": 9, "nombre": in["nombre"]}})
		})
	})
	got, err := c.UpdateCustomer(context.Background(), 9, ports.CustomerUpdate{Name: "Eva"})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if got.ID != 9 || got.Name != "Eva" {
		t.Fatalf("unexpected customer %+v", got)
	}
}

// ---------------------------------------------------------------------------
// Onboarding
// ---------------------------------------------------------------------------

func TestClient_StartSignup_CreatedFlag(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/api/onboarding/microempresa/start", func(ctx echo.Context) error {
			var in map[string]any
			_ = ctx.Bind(&in)
			if _, ok := in["signup_id"]; ok {
				return ctx.JSON(http.StatusOK, map[string]any{"signup_id": in["signup_id"], "tenant_id": 4, "message": "actualizado"})
			}
			return ctx.JSON(http.StatusCreated, map[string]any{"signup_id": 12, "tenant_id": 4, "message": "creado"})
		})
	})
	res, err := c.StartSignup(context.Background(), ports.StartSignup{Name: "Sol"})
	if err != nil || !res.Created || res.SignupID != 12 {
		t.Fatalf("unexpected create result %+v %v", res, err)
	}
	res, err = c.StartSignup(context.Background(), ports.StartSignup{SignupID: 12, Name: "Sol"})
	if err != nil || res.Created || res.Message != "actualizado" {
		t.Fatalf("unexpected update result %+v %v", res, err)
	}
}

func TestClient_SubmitProof_Multipart(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/api/onboarding/microempresa/submit", func(ctx echo.Context) error {
			if ctx.FormValue("signup_id") != "12" || ctx.FormValue("id_plan") != "3" {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "campos"})
			}
			fh, err := ctx.FormFile("file")
			if err != nil {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "file"})
			}
			f, _ := fh.Open()
			defer f.Close()
			b, _ := io.ReadAll(f)
			if fh.Filename != "proof.png" || string(b) != "PNGDATA" {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "contenido"})
			}
			return ctx.JSON(http.StatusOK, map[string]string{"message": "recibido"})
		})
	})
	msg, err := c.SubmitProof(context.Background(), ports.SubmitProof{
		SignupID: 12,
		PlanID:   3,
		File:     ports.Attachment{Name: "/tmp/x/proof.png", Content: strings.NewReader("PNGDATA")},
	})
	if err != nil || msg != "recibido" {
		t.Fatalf("SubmitProof = %q, %v", msg, err)
	}
}

func TestClient_SignupStatus_StaleID(t *testing.T) {
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/api/onboarding/microempresa/status", func(ctx echo.Context) error {
			if ctx.QueryParam("signup_id") == "5" {
				return ctx.JSON(http.StatusOK, map[string]any{"signup_id": 5, "estado": "en_espera", "id_plan": 2, "tiene_comprobante": true})
			}
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "signup_id no encontrado"})
		})
	})
	st, err := c.SignupStatus(context.Background(), 5)
	if err != nil || st.State != domain.SignupWaiting || !st.HasProof || !st.HasPlan() {
		t.Fatalf("unexpected status %+v %v", st, err)
	}
	if _, err := c.SignupStatus(context.Background(), 6); !errors.Is(err, domain.ErrSignupNotFound) {
		t.Fatalf("expected ErrSignupNotFound, got %v", err)
	}
}

func TestClient_PlansAndReview(t *testing.T) {
	var statusBody map[string]string
	c, _ := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/api/plans", func(ctx echo.Context) error {
			return ctx.JSONBlob(http.StatusOK, []byte(`{"plans":[{"id_plan":1,"nombre":"Basic","precio":"10.5","estado":"activo","caracteristicas":["a"]}]}`))
		})
		e.PATCH("/api/admin/plans/:id", func(ctx echo.Context) error {
			_ = ctx.Bind(&statusBody)
			return ctx.JSON(http.StatusOK, map[string]string{"message": "Plan activado"})
		})
		e.GET("/api/onboarding/microempresa/pending", func(ctx echo.Context) error {
			return ctx.JSONBlob(http.StatusOK, []byte(`{"pendientes":[{"tenant_id":4,"suscripcion_id":8,"estado":"en_espera","microempresa":{"nombre":"Sol"},"plan":{"nombre":"Pro","precio":20},"proof_url":"/api/uploads/p.png"}]}`))
		})
		e.PATCH("/api/onboarding/microempresa/:tenant/approve", func(ctx echo.Context) error {
			return ctx.JSON(http.StatusOK, map[string]string{"message": "aprobado " + ctx.Param("tenant")})
		})
	})
	ctx := context.Background()

	plans, err := c.ListPlans(ctx)
	if err != nil || len(plans) != 1 || plans[0].Price != 10.5 {
		t.Fatalf("ListPlans = %+v, %v", plans, err)
	}
	msg, err := c.SetPlanStatus(ctx, 1, domain.StatusActive)
	if err != nil || msg != "Plan activado" || statusBody["estado"] != "activo" {
		t.Fatalf("SetPlanStatus = %q, %v, body %v", msg, err, statusBody)
	}
	pending, err := c.ListPending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("ListPending = %+v, %v", pending, err)
	}
	if link := pending[0].ProofLink(c.BaseURL()); link != c.BaseURL()+"/api/uploads/p.png" {
		t.Fatalf("proof link %q", link)
	}
	if msg, err := c.Approve(ctx, 4); err != nil || msg != "aprobado 4" {
		t.Fatalf("Approve = %q, %v", msg, err)
	}
}
