package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

const (
	defaultWebsiteName = "News Now"
	// the admin colour picker sends black when nothing was chosen
	unsetThemeColor = "#000000"
)

type SettingsInput struct {
	WebsiteName       string `json:"websiteName"`
	Image             string `json:"image"`
	ThemeColor        string `json:"themeColor"`
	FooterDescription string `json:"footerDescription"`
}

type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

// Get returns common.ErrorNotFound until settings have been saved.
func (s *SettingsService) Get(ctx context.Context) (*models.Setting, error) {
	st, err := s.repomanager.Settings(s.db).Get(ctx)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting settings")
	}
	return st, nil
}

// Save replaces the settings, filling defaults for empty fields.
func (s *SettingsService) Save(ctx context.Context, in SettingsInput) (*models.Setting, error) {
	st := &models.Setting{
		WebsiteName:       strings.TrimSpace(in.WebsiteName),
		Image:             in.Image,
		ThemeColor:        in.ThemeColor,
		FooterDescription: strings.TrimSpace(in.FooterDescription),
	}

	if st.WebsiteName == "" {
		st.WebsiteName = defaultWebsiteName
	}
	if strings.EqualFold(st.ThemeColor, unsetThemeColor) {
		st.ThemeColor = ""
	}
	if st.FooterDescription == "" {
		st.FooterDescription = fmt.Sprintf("© Copyright %d %s", timeNow().Year(), st.WebsiteName)
	}

	if err := s.repomanager.Settings(s.db).Save(ctx, st); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	return st, nil
}
