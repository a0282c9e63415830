package user

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterHashesPasswordAndAssignsCustomerRole(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	created, err := svc.Register(User{Email: "asha@example.com", Password: "s3cret", FirstName: "Asha"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.Role != RoleCustomer {
		t.Errorf("role = %q, want %q", created.Role, RoleCustomer)
	}
	if created.Password == "s3cret" {
		t.Error("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret")) != nil {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	if _, err := svc.Register(User{Email: "asha@example.com", Password: "x"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(User{Email: "asha@example.com", Password: "y"}); err != ErrEmailExists {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	svc.Register(User{Email: "asha@example.com", Password: "s3cret"})

	if _, err := svc.Authenticate("asha@example.com", "s3cret"); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if _, err := svc.Authenticate("asha@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("nobody@example.com", "s3cret"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateRehashesChangedPassword(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	created, _ := svc.Register(User{Email: "asha@example.com", Password: "old"})

	updated, err := svc.Update(created.ID, User{Password: "new"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new")) != nil {
		t.Error("updated password does not verify")
	}
}
