package services

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/bugnest/backend/internal/config"
	"github.com/go-ldap/ldap/v3"
)

// LDAPService authenticates users against a directory server when LDAP
// auth is enabled in the config.
type LDAPService struct {
	cfg *config.LDAPConfig
}

// LDAPEntry is the subset of directory attributes the tracker uses.
type LDAPEntry struct {
	Name  string
	Email string
}

func NewLDAPService(cfg *config.LDAPConfig) *LDAPService {
	return &LDAPService{cfg: cfg}
}

// Authenticate binds with the service account, searches for the user and
// re-binds with the user's credentials.
func (s *LDAPService) Authenticate(email, password string) (*LDAPEntry, error) {
	if !s.cfg.Enabled {
		return nil, errors.New("ldap authentication is disabled")
	}
	if password == "" {
		return nil, errors.New("empty password")
	}

	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if s.cfg.BindDN != "" {
		if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("ldap service bind: %w", err)
		}
	}

	filter := fmt.Sprintf(s.cfg.UserFilter, ldap.EscapeFilter(email))
	searchReq := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 10, false,
		filter,
		[]string{"dn", "cn", "mail"},
		nil,
	)

	result, err := conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) != 1 {
		return nil, errors.New("user not found in directory")
	}

	entry := result.Entries[0]
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	name := entry.GetAttributeValue("cn")
	if name == "" {
		name = email
	}
	return &LDAPEntry{Name: name, Email: email}, nil
}

func (s *LDAPService) connect() (*ldap.Conn, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if s.cfg.UseSSL {
		return ldap.DialURL("ldaps://"+addr, ldap.DialWithTLSConfig(&tls.Config{ServerName: s.cfg.Host}))
	}
	return ldap.DialURL("ldap://" + addr)
}
