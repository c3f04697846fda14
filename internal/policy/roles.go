package policy

import (
	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/internal/models"
)

// ResourceEmploye is the gate resource name of employe profiles.
const ResourceEmploye = "employe"

// Roles is the permission table of each account role. Clients hold no
// permission on the staff API.
var Roles = gate.RoleTable{
	string(models.RoleAdmin):   {gate.PermissionAll},
	string(models.RoleEmploye): {gate.NewPermission(ResourceEmploye, gate.ActionView)},
	string(models.RoleClient):  nil,
}
