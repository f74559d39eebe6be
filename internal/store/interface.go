package store

import (
	"context"
	"time"

	"quill/internal/models"
)

// AuditStore is the soft-delete lifecycle shared by every audited table.
type AuditStore interface {
	AuditState(ctx context.Context, entity models.Entity, id string) (*models.Audit, error)
	SoftDelete(ctx context.Context, entity models.Entity, ids []string, actor string, now time.Time) (int, error)
	Restore(ctx context.Context, entity models.Entity, ids []string) (int, error)
	HardDelete(ctx context.Context, entity models.Entity, id string, now time.Time) ([]string, error)
}

// BlogStore abstracts category, tag, article and comment persistence.
type BlogStore interface {
	AuditStore

	CreateTerm(ctx context.Context, term *models.Term) error
	GetTerm(ctx context.Context, kind models.TermKind, id string, scope models.Scope) (*models.Term, error)
	GetActiveTermBySlug(ctx context.Context, kind models.TermKind, slug string) (*models.Term, error)
	UpdateTerm(ctx context.Context, term *models.Term) error
	ListTerms(ctx context.Context, kind models.TermKind, filter TermFilter) ([]models.Term, error)
	TermNameTaken(ctx context.Context, kind models.TermKind, name, excludeID string) (bool, error)
	ResolveTermIDs(ctx context.Context, kind models.TermKind, ids []string) ([]string, error)

	CreateArticle(ctx context.Context, article *models.Article, links ArticleLinks) error
	GetArticle(ctx context.Context, id string, scope models.Scope) (*models.Article, error)
	GetPublishedArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	UpdateArticle(ctx context.Context, article *models.Article, links ArticleLinks) ([]string, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]models.Article, error)
	CountArticles(ctx context.Context, filter ArticleFilter) (int, error)
	PublishArticles(ctx context.Context, ids []string, actor string, now time.Time) (int, error)
	IncrementArticleViews(ctx context.Context, id string) error
	IncrementArticleLikes(ctx context.Context, id string) error
	RelatedArticles(ctx context.Context, article *models.Article, limit int) ([]models.Article, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string, scope models.Scope) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
	CountComments(ctx context.Context, filter CommentFilter) (int, error)
	ApproveComments(ctx context.Context, ids []string, actor string, now time.Time) (int, error)
}

// MediaStore is the metadata surface for stored files.
//
// Claims and releases happen inside the owning record's transaction, so only
// upload and cleanup operations appear here.
type MediaStore interface {
	CreateMedia(ctx context.Context, media *models.Media) error
	GetMedia(ctx context.Context, key string) (*models.Media, error)
	ListUnownedMedia(ctx context.Context, cutoff time.Time, limit int) ([]models.Media, error)
	DeleteUnownedMedia(ctx context.Context, key string) (bool, error)
}

// AccountStore abstracts users, sessions, profiles, companies and contacts.
type AccountStore interface {
	CountEnabledUsers(ctx context.Context, role models.Role) (int, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, username string, now time.Time) ([]string, error)

	CreateSession(ctx context.Context, userID, tokenHash string, expiresAt, createdAt time.Time) error
	GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	RevokeSessionByTokenHash(ctx context.Context, tokenHash string, revokedAt time.Time) error

	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) ([]string, error)

	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	UpdateCompany(ctx context.Context, company *models.Company) ([]string, error)
	DeleteCompany(ctx context.Context, id string, now time.Time) ([]string, error)

	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context, limit, offset int) ([]models.Contact, error)
}

var (
	_ BlogStore    = (*Store)(nil)
	_ MediaStore   = (*Store)(nil)
	_ AccountStore = (*Store)(nil)
)
