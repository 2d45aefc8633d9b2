package models

// Account is the cached snapshot of the authenticated marketplace account.
// It is owned by the session store and replaced wholesale on login, upgrade
// or reload; consumers never mutate it in place, they derive copies through
// the With*/Without* helpers.
type Account struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Roles []RoleTag `json:"roles"`

	// Provisional marks role tags that were injected optimistically on the
	// client before the server confirmed them. They are reconciled and
	// overwritten on the next successful server read.
	Provisional map[RoleTag]bool `json:"provisional,omitempty"`
}

// HasRole reports whether the snapshot carries the given role tag,
// provisional or confirmed.
func (a *Account) HasRole(role RoleTag) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasRecruiterFamilyRole reports whether the snapshot carries RECRUITER or
// RECRUITER_PENDING. The two are mutually exclusive on a correctly synced
// account, but a transient window where both or neither is cached must be
// tolerated.
func (a *Account) HasRecruiterFamilyRole() bool {
	return a.HasRole(RoleRecruiter) || a.HasRole(RoleRecruiterPending)
}

// IsProvisional reports whether the given role was injected optimistically.
func (a *Account) IsProvisional(role RoleTag) bool {
	return a != nil && a.Provisional[role]
}

// Clone returns a deep copy of the snapshot.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := &Account{
		ID:    a.ID,
		Email: a.Email,
		Roles: append([]RoleTag(nil), a.Roles...),
	}
	if len(a.Provisional) > 0 {
		out.Provisional = make(map[RoleTag]bool, len(a.Provisional))
		for k, v := range a.Provisional {
			out.Provisional[k] = v
		}
	}
	return out
}

// WithRole returns a copy of the snapshot with the given role appended. When
// provisional is true the role is labeled as a client-side optimistic patch.
// Adding an already-present role only updates its provisional label.
func (a *Account) WithRole(role RoleTag, provisional bool) *Account {
	out := a.Clone()
	if out == nil {
		return nil
	}
	if !out.HasRole(role) {
		out.Roles = append(out.Roles, role)
	}
	if provisional {
		if out.Provisional == nil {
			out.Provisional = make(map[RoleTag]bool, 1)
		}
		out.Provisional[role] = true
	} else {
		delete(out.Provisional, role)
	}
	return out
}

// WithoutRecruiterRoles returns a copy of the snapshot with RECRUITER and
// RECRUITER_PENDING stripped. Used to self-heal a stale client cache after
// the backend reports the recruiter registration as missing.
func (a *Account) WithoutRecruiterRoles() *Account {
	out := a.Clone()
	if out == nil {
		return nil
	}
	kept := out.Roles[:0]
	for _, r := range out.Roles {
		if r != RoleRecruiter && r != RoleRecruiterPending {
			kept = append(kept, r)
		}
	}
	out.Roles = kept
	delete(out.Provisional, RoleRecruiter)
	delete(out.Provisional, RoleRecruiterPending)
	return out
}
