// profile.go — самостоятельное редактирование профиля пользователем:
// имя, email и телефон. Изменения попадают в контакты карточек подрядчиков.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

// DefaultPhoneRegion — регион разбора телефонных номеров по умолчанию.
const DefaultPhoneRegion = "AU"

// maxFullNameLength — максимальная длина отображаемого имени.
const maxFullNameLength = 100

// ProfileUpdate — изменяемые поля профиля. nil — поле не меняется.
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
}

// ProfileService — сервис редактирования профиля.
type ProfileService struct {
	store       *repository.Store
	recomputer  Recomputer
	validate    *validator.Validate
	phoneRegion string
	logger      *slog.Logger
}

// NewProfileService создаёт сервис профиля.
// phoneRegion — ISO-код региона для номеров без международного префикса.
func NewProfileService(store *repository.Store, recomputer Recomputer, phoneRegion string, logger *slog.Logger) *ProfileService {
	if phoneRegion == "" {
		phoneRegion = DefaultPhoneRegion
	}
	return &ProfileService{
		store:       store,
		recomputer:  recomputer,
		validate:    validator.New(),
		phoneRegion: strings.ToUpper(phoneRegion),
		logger:      logger.With(slog.String("component", "profile_service")),
	}
}

// GetProfile возвращает пользователя и его организацию.
func (s *ProfileService) GetProfile(userID int64) (*model.User, *model.Organization, error) {
	u, err := s.store.GetUser(userID)
	if err != nil {
		return nil, nil, fromRepo(err, EntityUser, userID)
	}
	org, err := s.store.GetOrganization(u.OrgID)
	if err != nil {
		return nil, nil, fromRepo(err, EntityOrganization, u.OrgID)
	}
	return u, org, nil
}

// UpdateProfile применяет изменения профиля. Поля обрезаются по краям;
// email проверяется по формату, телефон — через libphonenumber и
// сохраняется в том виде, в котором введён.
//
// Ошибки:
//   - ErrIdentityMissing — не указан пользователь
//   - ErrValidation — некорректные значения полей
//   - ErrNotFound — пользователь не найден
//   - ErrConflict — email уже занят другим пользователем
//
// Пустое обновление возвращает текущий профиль, не изменяя хранилище.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*model.User, error) {
	if userID == 0 {
		return nil, ErrIdentityMissing
	}

	fullName, email, phone, err := s.normalize(upd)
	if err != nil {
		return nil, err
	}
	if fullName == nil && email == nil && phone == nil {
		u, err := s.store.GetUser(userID)
		if err != nil {
			return nil, fromRepo(err, EntityUser, userID)
		}
		return u, nil
	}

	var updated *model.User
	err = s.store.Update(ctx, func(tx *repository.Tx) error {
		u, err := tx.User(userID)
		if err != nil {
			return fromRepo(err, EntityUser, userID)
		}
		if fullName != nil {
			u.FullName = *fullName
		}
		if email != nil {
			u.Email = *email
		}
		if phone != nil {
			u.Phone = *phone
		}
		if err := tx.UpdateUser(u); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: email %q уже используется", ErrConflict, u.Email)
			}
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recomputer.Recompute(ctx)
	s.logger.Info("Профиль обновлён",
		slog.Int64("actor_id", userID),
		slog.Bool("full_name", fullName != nil),
		slog.Bool("email", email != nil),
		slog.Bool("phone", phone != nil),
	)
	return updated, nil
}

// normalize обрезает и проверяет переданные поля.
func (s *ProfileService) normalize(upd ProfileUpdate) (fullName, email, phone *string, err error) {
	if upd.FullName != nil {
		v := strings.TrimSpace(*upd.FullName)
		if v == "" {
			return nil, nil, nil, validationf("имя не может быть пустым")
		}
		if len([]rune(v)) > maxFullNameLength {
			return nil, nil, nil, validationf("имя длиннее %d символов", maxFullNameLength)
		}
		fullName = &v
	}
	if upd.Email != nil {
		v := strings.TrimSpace(*upd.Email)
		if err := s.validate.Var(v, "required,email"); err != nil {
			return nil, nil, nil, validationf("некорректный email: %q", v)
		}
		email = &v
	}
	if upd.Phone != nil {
		v := strings.TrimSpace(*upd.Phone)
		if v != "" {
			if err := ValidatePhoneNumber(v, s.phoneRegion); err != nil {
				return nil, nil, nil, err
			}
		}
		phone = &v
	}
	return fullName, email, phone, nil
}

// ValidatePhoneNumber проверяет номер телефона для региона region.
// Пустой номер считается некорректным.
func ValidatePhoneNumber(phone, region string) error {
	num, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return validationf("некорректный номер телефона %q: %v", phone, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return validationf("номер телефона %q недействителен для региона %s", phone, region)
	}
	return nil
}
