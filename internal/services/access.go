package services

import "tienda/internal/models"

func requireUser(p *models.Principal) error {
	if p == nil || p.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(p *models.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
