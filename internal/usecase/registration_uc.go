package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
	"telegram-event-reminder/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// MaxDisplayNameLen bounds the name typed during registration (in runes).
const MaxDisplayNameLen = 32

type ReplyKind string

const (
	ReplyPromptRestart   ReplyKind = "prompt_restart"
	ReplyCompanySelected ReplyKind = "company_selected"
	ReplyCompanyNotFound ReplyKind = "company_not_found"
	ReplyAskName         ReplyKind = "ask_name"
	ReplyNameTooLong     ReplyKind = "name_too_long"
	ReplyNameSaved       ReplyKind = "name_saved"
)

// RegistrationResult tells the bot what to answer. Companies is filled whenever the
// user should pick (again) from the company keyboard.
type RegistrationResult struct {
	Reply      ReplyKind
	Company    string
	Name       string
	Companies  []string
	Registered bool // a new user row was created
}

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

type RegistrationUseCase interface {
	// Start resets any conversation and asks for the company.
	Start(ctx context.Context, tgID int64) ([]string, error)
	// HandleMessage advances the conversation with a free-text message.
	HandleMessage(ctx context.Context, tgID int64, text string) (*RegistrationResult, error)
}

type registrationUC struct {
	users       repository.UserRepository
	companies   repository.CompanyRepository
	roles       repository.RoleRepository
	states      repository.StateRepository
	tm          repository.TransactionManager
	defaultRole string
	log         *zerolog.Logger
}

func NewRegistrationUseCase(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	roles repository.RoleRepository,
	states repository.StateRepository,
	tm repository.TransactionManager,
	defaultRole string,
	logger *zerolog.Logger,
) *registrationUC {
	l := logger.With().Str("component", "RegistrationUC").Logger()
	return &registrationUC{
		users:       users,
		companies:   companies,
		roles:       roles,
		states:      states,
		tm:          tm,
		defaultRole: defaultRole,
		log:         &l,
	}
}

func (uc *registrationUC) Start(ctx context.Context, tgID int64) ([]string, error) {
	defer logging.TraceDuration(uc.log, "RegistrationUC.Start")()

	names, err := uc.companyNames(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.states.SetState(ctx, tgID, &repository.ConversationState{Step: repository.StepAwaitingCompany}); err != nil {
		return nil, fmt.Errorf("set state: %w", err)
	}
	return names, nil
}

func (uc *registrationUC) HandleMessage(ctx context.Context, tgID int64, text string) (*RegistrationResult, error) {
	defer logging.TraceDuration(uc.log, "RegistrationUC.HandleMessage")()

	st, err := uc.states.GetState(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if st == nil {
		return &RegistrationResult{Reply: ReplyPromptRestart}, nil
	}

	switch st.Step {
	case repository.StepAwaitingCompany:
		return uc.selectCompany(ctx, tgID, text)
	case repository.StepAwaitingName:
		return uc.saveName(ctx, tgID, text)
	default:
		uc.log.Warn().Int64("tg_id", tgID).Str("step", st.Step).Msg("unknown conversation step, resetting")
		if err := uc.states.ClearState(ctx, tgID); err != nil {
			return nil, fmt.Errorf("clear state: %w", err)
		}
		return &RegistrationResult{Reply: ReplyPromptRestart}, nil
	}
}

func (uc *registrationUC) selectCompany(ctx context.Context, tgID int64, text string) (*RegistrationResult, error) {
	company, err := uc.companies.FindByName(ctx, repository.NoTX, text)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && company == nil) {
		names, err := uc.companyNames(ctx)
		if err != nil {
			return nil, err
		}
		return &RegistrationResult{Reply: ReplyCompanyNotFound, Companies: names}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find company: %w", domain.ErrDataAccess, err)
	}

	var created bool
	err = uc.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		u, err := uc.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if u != nil {
			u.CompanyID = company.ID
			u.Touch()
			return uc.users.Save(ctx, tx, u)
		}

		role, err := uc.roles.FindByName(ctx, tx, uc.defaultRole)
		if err != nil {
			return fmt.Errorf("default role %q: %w", uc.defaultRole, err)
		}
		nu, err := model.NewUser(tgID, company.ID, role.ID)
		if err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: save user company: %w", domain.ErrDataAccess, err)
	}

	if err := uc.states.SetState(ctx, tgID, &repository.ConversationState{
		Step: repository.StepAwaitingName,
		Data: map[string]string{"company": company.Name},
	}); err != nil {
		return nil, fmt.Errorf("set state: %w", err)
	}

	uc.log.Info().Int64("tg_id", tgID).Int64("company_id", company.ID).Bool("created", created).Msg("company selected")
	return &RegistrationResult{Reply: ReplyCompanySelected, Company: company.Name, Registered: created}, nil
}

func (uc *registrationUC) saveName(ctx context.Context, tgID int64, text string) (*RegistrationResult, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return &RegistrationResult{Reply: ReplyAskName}, nil
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return &RegistrationResult{Reply: ReplyNameTooLong}, nil
	}

	u, err := uc.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && u == nil) {
		if err := uc.states.ClearState(ctx, tgID); err != nil {
			return nil, fmt.Errorf("clear state: %w", err)
		}
		return &RegistrationResult{Reply: ReplyPromptRestart}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", domain.ErrDataAccess, err)
	}

	u.Username = name
	u.Touch()
	if err := uc.users.Save(ctx, repository.NoTX, u); err != nil {
		return nil, fmt.Errorf("%w: save user name: %w", domain.ErrDataAccess, err)
	}
	if err := uc.states.ClearState(ctx, tgID); err != nil {
		return nil, fmt.Errorf("clear state: %w", err)
	}

	uc.log.Info().Int64("tg_id", tgID).Msg("registration completed")
	return &RegistrationResult{Reply: ReplyNameSaved, Name: name}, nil
}

func (uc *registrationUC) companyNames(ctx context.Context) ([]string, error) {
	companies, err := uc.companies.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("%w: list companies: %w", domain.ErrDataAccess, err)
	}
	names := make([]string, 0, len(companies))
	for _, c := range companies {
		names = append(names, c.Name)
	}
	return names, nil
}
