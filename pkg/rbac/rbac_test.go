package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleUser, PermissionCreateProject, true},
		{RoleUser, PermissionReadWorkOrder, true},
		{RoleUser, PermissionResolveDispute, false},
		{RoleUser, PermissionListAllWorkOrders, false},
		{RoleAdmin, PermissionResolveDispute, true},
		{RoleAdmin, PermissionListAllWorkOrders, true},
		{RoleAdmin, PermissionReplayOutbox, true},
		{RoleUser, PermissionReplayOutbox, false},
		{"ghost", PermissionReadWorkOrder, false},
		{"", PermissionReadWorkOrder, false},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}

func TestCheckPermission(t *testing.T) {
	if err := CheckPermission(RoleAdmin, PermissionResolveDispute); err != nil {
		t.Errorf("admin resolve dispute: %v", err)
	}

	err := CheckPermission(RoleUser, PermissionResolveDispute)
	if err == nil {
		t.Fatal("user resolve dispute: expected error")
	}
	denied, ok := err.(*PermissionDeniedError)
	if !ok {
		t.Fatalf("expected PermissionDeniedError, got %T", err)
	}
	if denied.Role != RoleUser || denied.Permission != PermissionResolveDispute {
		t.Errorf("denied = %+v", denied)
	}
}
