package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenClaims - то, что сервис берёт из токена провайдера
type TokenClaims struct {
	Subject string
	Email   string
	Phone   string // цифры из локальной части email, может быть пустым
}

// DecodeToken разбирает payload токена без проверки подписи:
// подпись проверяет провайдер авторизации.
func DecodeToken(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenDecode
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrTokenDecode)
	}

	email, _ := claims["email"].(string)
	return &TokenClaims{
		Subject: subject,
		Email:   email,
		Phone:   PhoneFromEmail(email),
	}, nil
}

// NormalizePhone оставляет только цифры
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneFromEmail: "010-1234-5678@studio.app" -> "01012345678"
func PhoneFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return ""
	}
	return NormalizePhone(email[:at])
}

type IdentityService struct {
	profiles ProfileStore
	logger   *zap.Logger
}

func NewIdentityService(profiles ProfileStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		profiles: profiles,
		logger:   logger,
	}
}

// Resolve находит профиль по токену. Только чтение.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*model.Profile, error) {
	claims, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}

	bySubject, byPhone, err := s.lookup(ctx, claims)
	if err != nil {
		return nil, err
	}

	switch {
	case bySubject != nil:
		return bySubject, nil
	case byPhone != nil:
		return byPhone, nil
	default:
		return nil, ErrProfileNotFound
	}
}

// Register возвращает профиль для токена, при необходимости создавая его.
// Профиль, заведённый заранее по телефону, получает subject id при первом входе.
func (s *IdentityService) Register(ctx context.Context, token, displayName string) (*model.Profile, bool, error) {
	claims, err := DecodeToken(token)
	if err != nil {
		return nil, false, err
	}

	profile, created, err := s.register(ctx, claims, displayName)
	if errors.Is(err, repository.ErrDuplicate) {
		// параллельная регистрация успела раньше, ищем профиль заново
		s.logger.Info("Concurrent registration detected",
			zap.String("subject_id", claims.Subject),
		)
		profile, created, err = s.register(ctx, claims, displayName)
	}
	if err != nil {
		return nil, false, err
	}

	return profile, created, nil
}

func (s *IdentityService) register(ctx context.Context, claims *TokenClaims, displayName string) (*model.Profile, bool, error) {
	bySubject, byPhone, err := s.lookup(ctx, claims)
	if err != nil {
		return nil, false, err
	}

	if bySubject != nil {
		return bySubject, false, nil
	}

	if byPhone != nil {
		if byPhone.SubjectID == nil {
			if err := s.profiles.LinkSubject(ctx, byPhone.ID, claims.Subject); err != nil {
				return nil, false, storeError("link subject", err)
			}
			subject := claims.Subject
			byPhone.SubjectID = &subject

			s.logger.Info("Profile linked to subject",
				zap.String("profile_id", byPhone.ID.String()),
				zap.String("subject_id", claims.Subject),
			)
		}
		return byPhone, false, nil
	}

	profile := &model.Profile{
		DisplayName: registrationName(displayName, claims.Phone),
	}
	subject := claims.Subject
	profile.SubjectID = &subject
	if claims.Phone != "" {
		phone := claims.Phone
		profile.Phone = &phone
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, false, storeError("create profile", err)
	}

	s.logger.Info("New profile registered",
		zap.String("profile_id", profile.ID.String()),
		zap.String("subject_id", claims.Subject),
		zap.Bool("has_phone", profile.Phone != nil),
	)

	return profile, true, nil
}

func (s *IdentityService) lookup(ctx context.Context, claims *TokenClaims) (bySubject, byPhone *model.Profile, err error) {
	candidates, err := s.profiles.FindBySubjectOrPhone(ctx, claims.Subject, claims.Phone)
	if err != nil {
		return nil, nil, storeError("find profile", err)
	}

	for _, p := range candidates {
		if p.SubjectID != nil && *p.SubjectID == claims.Subject && bySubject == nil {
			bySubject = p
		}
		if claims.Phone != "" && p.Phone != nil && *p.Phone == claims.Phone && byPhone == nil {
			byPhone = p
		}
	}

	// Совпадение по subject важнее; расхождение фиксируем в логе
	if bySubject != nil && byPhone != nil && bySubject.ID != byPhone.ID {
		s.logger.Warn("Token subject and phone resolve to different profiles",
			zap.String("subject_profile_id", bySubject.ID.String()),
			zap.String("phone_profile_id", byPhone.ID.String()),
		)
	}

	return bySubject, byPhone, nil
}

func registrationName(displayName, phone string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	if phone != "" {
		return phone
	}
	return "Guest"
}
