package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/ports/repository"
	"telegram-event-reminder/internal/infra/logging"

	"github.com/rs/zerolog"
)

const exportPageSize = 500

var exportHeader = []string{
	"telegram_id", "username", "company", "role",
	"is_blocked", "is_admin", "created_at", "updated_at",
}

// Compile-time check
var _ ExportUseCase = (*exportUC)(nil)

type ExportUseCase interface {
	// ExportUsersCSV renders all users, oldest id first, as CSV with a header row.
	ExportUsersCSV(ctx context.Context) ([]byte, error)
}

type exportUC struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	roles     repository.RoleRepository
	log       *zerolog.Logger
}

func NewExportUseCase(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	roles repository.RoleRepository,
	logger *zerolog.Logger,
) *exportUC {
	return &exportUC{users: users, companies: companies, roles: roles, log: logger}
}

func (uc *exportUC) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	defer logging.TraceDuration(uc.log, "ExportUC.ExportUsersCSV")()

	companyNames, roleNames, err := uc.directoryNames(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	rows := 0
	for offset := 0; ; offset += exportPageSize {
		page, err := uc.users.List(ctx, repository.NoTX, offset, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: list users: %w", domain.ErrDataAccess, err)
		}
		for _, u := range page {
			rec := []string{
				strconv.FormatInt(u.TelegramID, 10),
				u.Username,
				companyNames[u.CompanyID],
				roleNames[u.RoleID],
				strconv.FormatBool(u.IsBlocked),
				strconv.FormatBool(u.IsAdmin),
				u.CreatedAt.UTC().Format(time.RFC3339),
				u.UpdatedAt.UTC().Format(time.RFC3339),
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
			rows++
		}
		if len(page) < exportPageSize {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	uc.log.Info().Int("rows", rows).Msg("users exported")
	return buf.Bytes(), nil
}

func (uc *exportUC) directoryNames(ctx context.Context) (map[int64]string, map[int64]string, error) {
	companies, err := uc.companies.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list companies: %w", domain.ErrDataAccess, err)
	}
	roles, err := uc.roles.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list roles: %w", domain.ErrDataAccess, err)
	}
	cn := make(map[int64]string, len(companies))
	for _, c := range companies {
		cn[c.ID] = c.Name
	}
	rn := make(map[int64]string, len(roles))
	for _, r := range roles {
		rn[r.ID] = r.Name
	}
	return cn, rn, nil
}
