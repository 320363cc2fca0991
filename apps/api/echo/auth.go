package echoapi

import (
	"context"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

const (
	contextClaimsKey = "claims"
	contextUserKey   = "user"
	contextSchoolKey = "school"
	audience         = "platform-digital"
	bearerScheme     = "Bearer"
)

// Custom claims set on Firebase users by the admin CLI.
const (
	FirebaseClaimUserID   = "user_id"
	FirebaseClaimSchoolID = "school_id"
	FirebaseClaimRole     = "role"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	SchoolID     string `json:"school_id,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (c Claims) IsSystemAdmin() bool {
	return c.Role == user.RoleSystemAdmin
}

// Valid checks the time based claims against core.NowFunc.
func (c Claims) Valid() error {
	now := core.NowFunc().Unix()
	if !c.VerifyExpiresAt(now, true) {
		return errors.New("token is expired")
	}
	if !c.VerifyIssuedAt(now, false) {
		return errors.New("token used before issued")
	}
	if !c.VerifyNotBefore(now, false) {
		return errors.New("token is not valid yet")
	}
	return nil
}

// TokenVerifier turns a bearer token into Claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := core.NowFunc()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  audience,
			ExpiresAt: now.Add(conf.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Email:        usr.Email,
		SchoolID:     usr.SchoolID,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// localVerifier checks the HS256 tokens issued by the login endpoint.
type localVerifier struct {
	key []byte
}

func NewLocalVerifier(conf *core.Config) TokenVerifier {
	return &localVerifier{key: []byte(conf.SecretKey)}
}

func (v *localVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// firebaseVerifier checks Firebase ID tokens. Role and school come from custom claims.
type firebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseAuth returns the Firebase Auth client of the configured project.
func NewFirebaseAuth(ctx context.Context, conf *core.Config) (*fbauth.Client, error) {
	var opts []option.ClientOption
	if conf.Auth.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Auth.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Firestore.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase auth")
	}
	return client, nil
}

func NewFirebaseVerifier(client *fbauth.Client) TokenVerifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, errInvalidToken
	}
	return ClaimsFromFirebase(token), nil
}

// ClaimsFromFirebase maps a verified Firebase token to Claims.
func ClaimsFromFirebase(token *fbauth.Token) *Claims {
	str := func(key string) string {
		s, _ := token.Claims[key].(string)
		return s
	}
	subject := str(FirebaseClaimUserID)
	if subject == "" {
		subject = token.UID
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    token.Issuer,
			Subject:   subject,
			Audience:  token.Audience,
			ExpiresAt: token.Expires,
			IssuedAt:  token.IssuedAt,
		},
		OrigIssuedAt: token.AuthTime,
		Email:        str("email"),
		SchoolID:     str(FirebaseClaimSchoolID),
		Role:         str(FirebaseClaimRole),
	}
}

// authMiddleware verifies the bearer token and stores its claims in the context.
func authMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			l := len(bearerScheme)
			if len(auth) <= l+1 || !strings.EqualFold(auth[:l], bearerScheme) {
				return middleware.ErrJWTMissing
			}
			claims, err := verifier.Verify(ctx.Request().Context(), strings.TrimSpace(auth[l+1:]))
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func authenticate(ctx context.Context, conf *core.Config, uname, pwd string, svc user.ServiceInterface) (*Claims, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !usr.IsActive {
		return nil, errAccountDeactivated
	}
	usr, err = svc.SetLastLogin(ctx, usr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetUserClaims(conf, usr), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc user.ServiceInterface) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// getContextUser also checks that the user is still active
	usr, err := getContextUser(ctx, svc)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.JWTRefreshExpirationDelta)
	if core.NowFunc().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(conf, GetUserClaims(conf, usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
