package git

import (
	"fmt"
	"os"
	"strings"
)

// DefaultAuthorName is the commit author used when nothing else is configured.
const DefaultAuthorName = "readme-bot"

// DefaultAuthorEmail is the noreply address of the GitHub Actions bot.
const DefaultAuthorEmail = "41898282+github-actions[bot]@users.noreply.github.com"

// Author is a resolved commit identity.
type Author struct {
	Name  string
	Email string
}

// String formats the author as "Name <email>".
func (a Author) String() string {
	return FormatGitAuthor(a.Name, a.Email)
}

// AuthorOptions holds the candidate sources for the commit identity.
type AuthorOptions struct {
	// ExplicitName and ExplicitEmail come from flags or the config file.
	ExplicitName  string
	ExplicitEmail string

	// EnvName and EnvEmail come from GIT_AUTHOR_NAME / GIT_AUTHOR_EMAIL.
	EnvName  string
	EnvEmail string
}

// ResolveAuthor picks the identity with priority explicit > environment > defaults.
// Host git config is not consulted; the identity is written
// into the repository before committing.
func ResolveAuthor(opts AuthorOptions) Author {
	a := Author{Name: DefaultAuthorName, Email: DefaultAuthorEmail}

	if opts.EnvName != "" {
		a.Name = opts.EnvName
	}
	if opts.EnvEmail != "" {
		a.Email = opts.EnvEmail
	}
	if opts.ExplicitName != "" {
		a.Name = opts.ExplicitName
	}
	if opts.ExplicitEmail != "" {
		a.Email = opts.ExplicitEmail
	}
	return a
}

// AuthorOptionsFromEnv fills the environment layer of AuthorOptions.
func AuthorOptionsFromEnv(name, email string) AuthorOptions {
	return AuthorOptions{
		ExplicitName:  name,
		ExplicitEmail: email,
		EnvName:       os.Getenv("GIT_AUTHOR_NAME"),
		EnvEmail:      os.Getenv("GIT_AUTHOR_EMAIL"),
	}
}

// FormatGitAuthor formats a git author string in the format "Name <email>".
func FormatGitAuthor(name, email string) string {
	if name == "" && email == "" {
		return ""
	}
	if name == "" {
		return email
	}
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// ParseGitAuthor parses a git author string in the format "Name <email>".
func ParseGitAuthor(author string) (name, email string) {
	author = strings.TrimSpace(author)

	leftAngle := strings.LastIndex(author, "<")
	rightAngle := strings.LastIndex(author, ">")

	if leftAngle != -1 && rightAngle != -1 && rightAngle > leftAngle {
		name = strings.TrimSpace(author[:leftAngle])
		email = strings.TrimSpace(author[leftAngle+1 : rightAngle])
	} else {
		name = author
	}

	return name, email
}
