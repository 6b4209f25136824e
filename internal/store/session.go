package store

// AuthUser is the locally cached identity of the signed-in account.
type AuthUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthToken returns the stored bearer token, empty when signed out.
func (s *Store) AuthToken() (string, error) {
	raw, _, err := s.get(keyAuthToken)
	return raw, err
}

// SaveAuthToken stores the bearer token.
func (s *Store) SaveAuthToken(token string) error {
	return s.set(keyAuthToken, token)
}

// AuthUserInfo returns the cached account identity, or nil when signed out.
func (s *Store) AuthUserInfo() (*AuthUser, error) {
	var user AuthUser
	ok, err := s.getJSON(keyAuthUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// SaveAuthUserInfo stores the account identity.
func (s *Store) SaveAuthUserInfo(user *AuthUser) error {
	return s.setJSON(keyAuthUser, user)
}

// BackendUserID returns the cached remote user id, empty when unknown.
func (s *Store) BackendUserID() (string, error) {
	raw, _, err := s.get(keyBackendUserID)
	return raw, err
}

// SaveBackendUserID caches the remote user id.
func (s *Store) SaveBackendUserID(id string) error {
	return s.set(keyBackendUserID, id)
}

// PolicyAcceptedVersion returns the accepted policy version, empty when the
// user has not accepted any.
func (s *Store) PolicyAcceptedVersion() (string, error) {
	raw, _, err := s.get(keyPolicyVersion)
	return raw, err
}

// SavePolicyAcceptedVersion records the accepted policy version.
func (s *Store) SavePolicyAcceptedVersion(version string) error {
	return s.set(keyPolicyVersion, version)
}

// ClearAuthToken removes all session-scoped keys: the token, the cached
// account identity, the remote user linkage and the backend drink map, plus
// policy acceptance. Device preferences survive.
func (s *Store) ClearAuthToken() error {
	for _, key := range []string{
		keyAuthToken,
		keyAuthUser,
		keyBackendUserID,
		keyBackendDrinkMap,
		keyPolicyVersion,
	} {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Logout clears the session and additionally purges the departing account's
// data: profile, day records, stats and custom drinks. Device preferences
// (units, timezone) and the weather caches stay.
func (s *Store) Logout() error {
	if err := s.ClearAuthToken(); err != nil {
		return err
	}
	for _, key := range []string{keyProfile, keyStats, keyGoal, keyGoalMode} {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	for _, prefix := range []string{keyDayPrefix, keyDrinkPrefix} {
		if err := s.deletePrefix(prefix); err != nil {
			return err
		}
	}
	return nil
}
