package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-employes/auth"
	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmployeProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role, active bool) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", IsActive: true, Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !active {
		// is_active has a column default, so false must be written explicitly
		if err := db.Model(&u).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate: %v", err)
		}
	}
	return u
}

func TestDBRoleResolver(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin@jo.fr", models.RoleAdmin, true)
	employe := createUser(t, db, "e@jo.fr", models.RoleEmploye, true)
	client := createUser(t, db, "c@jo.fr", models.RoleClient, true)
	inactive := createUser(t, db, "off@jo.fr", models.RoleAdmin, false)

	r := NewDBRoleResolver(db, Roles)
	ctx := context.Background()

	p, err := r.Resolve(ctx, admin.ID)
	if err != nil || p == nil || !p.HasPermission("employe:update") {
		t.Fatalf("admin profile = %v, err = %v", p, err)
	}
	p, _ = r.Resolve(ctx, employe.ID)
	if p == nil || !p.HasPermission("employe:view") || p.HasPermission("employe:list") {
		t.Fatalf("employe profile = %v", p)
	}
	for _, uid := range []uint{client.ID, inactive.ID, 9999} {
		if p, err := r.Resolve(ctx, uid); err != nil || p != nil {
			t.Errorf("user %d: profile = %v, err = %v, want nil", uid, p, err)
		}
	}
}

func TestOwnershipPolicy(t *testing.T) {
	p := NewOwnershipPolicy()
	ctx := context.Background()
	mine := &models.EmployeProfile{UserID: 5}

	if !p.Can(ctx, 5, gate.ActionView, mine) {
		t.Error("owner should be allowed")
	}
	if p.Can(ctx, 6, gate.ActionView, mine) {
		t.Error("non-owner should be denied")
	}
	if p.Can(ctx, 5, gate.ActionView, "not ownable") {
		t.Error("non-ownable resources are denied")
	}
	if !p.Can(ctx, 6, gate.ActionList, nil) {
		t.Error("nil resource is allowed")
	}

	bypass := NewAdminBypassPolicy(p, func(_ context.Context, uid uint) bool { return uid == 1 })
	if !bypass.Can(ctx, 1, gate.ActionView, mine) {
		t.Error("admin should bypass ownership")
	}
	if bypass.Can(ctx, 6, gate.ActionView, mine) {
		t.Error("non-admin non-owner should be denied")
	}
}

func TestAuthGate(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin@jo.fr", models.RoleAdmin, true)
	employe := createUser(t, db, "e@jo.fr", models.RoleEmploye, true)
	other := createUser(t, db, "o@jo.fr", models.RoleEmploye, true)

	ag := NewAuthGate(db, time.Minute, zap.NewNop())
	asUser := func(uid uint) context.Context { return auth.WithUserID(context.Background(), uid) }
	profile := &models.EmployeProfile{UserID: employe.ID}

	if !ag.IsAdmin(context.Background(), admin.ID) || ag.IsAdmin(context.Background(), employe.ID) {
		t.Fatal("IsAdmin mismatch")
	}
	if err := ag.Authorize(asUser(admin.ID), gate.ActionView, ResourceEmploye, profile); err != nil {
		t.Errorf("admin view: %v", err)
	}
	if err := ag.Authorize(asUser(employe.ID), gate.ActionView, ResourceEmploye, profile); err != nil {
		t.Errorf("owner view: %v", err)
	}
	if err := ag.Authorize(asUser(other.ID), gate.ActionView, ResourceEmploye, profile); err != gate.ErrForbidden {
		t.Errorf("other view: got %v, want ErrForbidden", err)
	}
	if err := ag.Authorize(context.Background(), gate.ActionView, ResourceEmploye, nil); err != gate.ErrUnauthorized {
		t.Errorf("anonymous: got %v, want ErrUnauthorized", err)
	}

	// demotion is visible only once the cache entry is dropped
	db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_active", false)
	if !ag.IsAdmin(context.Background(), admin.ID) {
		t.Fatal("expected cached admin role")
	}
	ag.InvalidateUser(admin.ID)
	if ag.IsAdmin(context.Background(), admin.ID) {
		t.Fatal("inactive admin must lose permissions after invalidation")
	}
}

func TestRequirePermission(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin@jo.fr", models.RoleAdmin, true)
	employe := createUser(t, db, "e@jo.fr", models.RoleEmploye, true)

	ag := NewAuthGate(db, time.Minute, zap.NewNop())
	h := ag.RequirePermission(ResourceEmploye, gate.ActionList)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		uid  uint
		want int
	}{
		{"anonymous", 0, http.StatusUnauthorized},
		{"employe", employe.ID, http.StatusForbidden},
		{"admin", admin.ID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/employe/", nil)
			if tt.uid != 0 {
				req = req.WithContext(auth.WithUserID(req.Context(), tt.uid))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
