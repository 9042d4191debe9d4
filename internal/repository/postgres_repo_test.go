package repository

import (
	"testing"

	"github.com/lib/pq"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresGroupRepoはGroupRepositoryインターフェースを満たすことを検証
func TestPostgresGroupRepo_ImplementsInterface(t *testing.T) {
	var _ GroupRepository = (*PostgresGroupRepo)(nil)
}

// PostgresMemberRepoはMemberRepositoryインターフェースを満たすことを検証
func TestPostgresMemberRepo_ImplementsInterface(t *testing.T) {
	var _ MemberRepository = (*PostgresMemberRepo)(nil)
}

// PostgresPinRepoはPinRepositoryインターフェースを満たすことを検証
func TestPostgresPinRepo_ImplementsInterface(t *testing.T) {
	var _ PinRepository = (*PostgresPinRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresGroupRepoが正しく初期化されることを検証
func TestNewPostgresGroupRepo_Initializes(t *testing.T) {
	repo := NewPostgresGroupRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// wrapDuplicateがunique_violationのみをErrDuplicateに変換することを検証
func TestWrapDuplicate(t *testing.T) {
	dupErr := &pq.Error{Code: uniqueViolation}
	if wrapDuplicate(dupErr) != ErrDuplicate {
		t.Error("unique_violation should map to ErrDuplicate")
	}

	otherErr := &pq.Error{Code: "23503"} // foreign_key_violation
	if wrapDuplicate(otherErr) == ErrDuplicate {
		t.Error("foreign_key_violation should not map to ErrDuplicate")
	}
}
