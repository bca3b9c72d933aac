package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dmarques/accounts-api/internal/domain/entity"
	repo "github.com/dmarques/accounts-api/internal/domain/repository"
	"github.com/dmarques/accounts-api/pkg/helpers"
	"github.com/dmarques/accounts-api/pkg/mailer"
	mailtpl "github.com/dmarques/accounts-api/pkg/mailer/templates"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrPhoneNotFound      = errors.New("phone not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingEmail       = errors.New("email is required")
	ErrMissingPassword    = errors.New("password is required")
)

// bearerPrefix is the fixed scheme prefix stripped from presented tokens.
const bearerPrefix = "Bearer "

// MailPublisher queues email jobs for the worker. Satisfied by
// helpers.RabbitPublisher.
type MailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Users        repo.UserRepository
	Addresses    repo.AddressRepository
	Phones       repo.PhoneRepository
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	Mail         MailPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewService(users repo.UserRepository, addresses repo.AddressRepository, phones repo.PhoneRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, mail MailPublisher, es *elasticsearch.Client, esUsersIndex string) *Service {
	return &Service{
		Users:        users,
		Addresses:    addresses,
		Phones:       phones,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		Mail:         mail,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

// Session is the Redis record for a logged-in account, keyed by sessionKey.
type Session struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	SessionID string    `json:"sid"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a new account. The email-uniqueness check here is a
// fast-path friendly error; the real enforcement point is the unique
// constraint on users.email, so a concurrent duplicate surfaces as a
// store error instead of a silent double insert.
func (s *Service) Register(ctx context.Context, dto UserDTO) (UserDTO, error) {
	if dto.Email == nil {
		return UserDTO{}, ErrMissingEmail
	}
	if dto.Password == nil {
		return UserDTO{}, ErrMissingPassword
	}
	exists, err := s.Users.ExistsByEmail(ctx, *dto.Email)
	if err != nil {
		return UserDTO{}, err
	}
	if exists {
		return UserDTO{}, ErrEmailExists
	}
	hash, err := helpers.HashPassword(*dto.Password)
	if err != nil {
		return UserDTO{}, err
	}
	dto.Password = &hash

	u := ToUser(dto)
	if err := s.Users.Create(ctx, &u); err != nil {
		return UserDTO{}, err
	}

	s.publishWelcomeEmail(ctx, u)
	_ = s.indexUser(ctx, u)

	return ToUserDTO(u), nil
}

// EmailExists reports whether an account with the given email is registered.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Users.ExistsByEmail(ctx, email)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (UserDTO, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserDTO{}, ErrUserNotFound
		}
		return UserDTO{}, err
	}
	return ToUserDTO(*u), nil
}

// DeleteByEmail removes the account and its owned addresses and phones.
// Deleting an email that was never registered is a no-op.
func (s *Service) DeleteByEmail(ctx context.Context, email string) error {
	if err := s.Users.DeleteByEmail(ctx, email); err != nil {
		return err
	}
	s.deleteUserIndex(ctx, email)
	return nil
}

// UpdateProfile merges the DTO's present scalar fields onto the account
// identified by the presented token. Address and phone collections are
// never touched here. A present password is re-hashed; an absent one
// keeps the stored hash through the merge.
func (s *Service) UpdateProfile(ctx context.Context, token string, dto UserDTO) (UserDTO, error) {
	email, err := s.JWT.ExtractEmail(stripBearer(token))
	if err != nil {
		return UserDTO{}, ErrInvalidToken
	}

	if dto.Password != nil {
		hash, herr := helpers.HashPassword(*dto.Password)
		if herr != nil {
			return UserDTO{}, herr
		}
		dto.Password = &hash
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserDTO{}, ErrUserNotFound
		}
		return UserDTO{}, err
	}

	merged := MergeUser(dto, *u)
	if err := s.Users.Update(ctx, &merged); err != nil {
		return UserDTO{}, err
	}

	s.publishProfileUpdatedEmail(ctx, merged)
	_ = s.indexUser(ctx, merged)
	return ToUserDTO(merged), nil
}

func (s *Service) UpdateAddress(ctx context.Context, id int64, dto AddressDTO) (AddressDTO, error) {
	a, err := s.Addresses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AddressDTO{}, ErrAddressNotFound
		}
		return AddressDTO{}, err
	}
	merged := MergeAddress(dto, *a)
	if err := s.Addresses.Update(ctx, &merged); err != nil {
		return AddressDTO{}, err
	}
	return ToAddressDTO(merged), nil
}

func (s *Service) UpdatePhone(ctx context.Context, id int64, dto PhoneDTO) (PhoneDTO, error) {
	p, err := s.Phones.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PhoneDTO{}, ErrPhoneNotFound
		}
		return PhoneDTO{}, err
	}
	merged := MergePhone(dto, *p)
	if err := s.Phones.Update(ctx, &merged); err != nil {
		return PhoneDTO{}, err
	}
	return ToPhoneDTO(merged), nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		sess := Session{UserID: u.ID, Email: u.Email, Name: u.Name, SessionID: sid, CreatedAt: time.Now().UTC()}
		key := sessionKey(u.ID)
		if rErr := helpers.RedisSetJSON(ctx, s.Redis, key, sess, 24*time.Hour); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("session store failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{UserID: u.ID, Email: u.Email, Name: u.Name}
	return resp, pair, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, int64, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, 0, ErrInvalidCredentials
	}
	u, err := s.Users.GetByEmail(ctx, claims.Email)
	if err != nil || u == nil {
		return TokenPair{}, 0, ErrInvalidCredentials
	}
	// Session id in the token must match the active session
	if s.Redis != nil {
		var sess Session
		found, rErr := helpers.RedisGetJSON(ctx, s.Redis, sessionKey(u.ID), &sess)
		if rErr != nil || !found || sess.SessionID != claims.SessionID {
			return TokenPair{}, 0, ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, 0, err
	}
	return pair, u.ID, nil
}

// Logout drops the account's active session so refresh tokens stop working.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if s.Redis == nil {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, sessionKey(userID))
}

// publishWelcomeEmail queues a welcome email job. Best-effort: a broker
// failure is logged and never fails the registration.
func (s *Service) publishWelcomeEmail(ctx context.Context, u entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     map[string]any{"Name": u.Name, "Email": u.Email},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email publish failed")
	}
}

// publishProfileUpdatedEmail queues a notification after a profile change.
// Best-effort like the welcome email.
func (s *Service) publishProfileUpdatedEmail(ctx context.Context, u entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ProfileUpdated,
		Data:     map[string]any{"Name": u.Name},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("profile update email publish failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(u.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) deleteUserIndex(ctx context.Context, email string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"email": email},
		},
	}
	b, _ := json.Marshal(query)
	req := esapi.DeleteByQueryRequest{Index: []string{s.ESUsersIndex}, Body: strings.NewReader(string(b))}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func stripBearer(token string) string {
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		return token[len(bearerPrefix):]
	}
	return token
}
