package patterns

import (
	"strings"
)

// Category is a coarse classification of a shell command.
type Category string

const (
	CategoryPackageManager Category = "package-manager"
	CategoryVersionControl Category = "version-control"
	CategoryTestRunner     Category = "test-runner"
	CategoryBuild          Category = "build"
	CategoryFileOps        Category = "file-ops"
	CategorySearch         Category = "search"
	CategoryOther          Category = "other"
)

var categoryByHead = map[string]Category{
	"npm": CategoryPackageManager, "npx": CategoryPackageManager,
	"pnpm": CategoryPackageManager, "yarn": CategoryPackageManager,
	"pip": CategoryPackageManager, "pip3": CategoryPackageManager,
	"uv": CategoryPackageManager, "poetry": CategoryPackageManager,
	"cargo": CategoryPackageManager, "brew": CategoryPackageManager,
	"apt": CategoryPackageManager, "apt-get": CategoryPackageManager,
	"gem": CategoryPackageManager, "bundle": CategoryPackageManager,

	"git": CategoryVersionControl, "gh": CategoryVersionControl,
	"hg": CategoryVersionControl, "svn": CategoryVersionControl,

	"pytest": CategoryTestRunner, "jest": CategoryTestRunner,
	"vitest": CategoryTestRunner, "rspec": CategoryTestRunner,
	"tox": CategoryTestRunner,

	"make": CategoryBuild, "cmake": CategoryBuild, "ninja": CategoryBuild,
	"gradle": CategoryBuild, "mvn": CategoryBuild, "tsc": CategoryBuild,
	"webpack": CategoryBuild, "vite": CategoryBuild,

	"ls": CategoryFileOps, "cp": CategoryFileOps, "mv": CategoryFileOps,
	"rm": CategoryFileOps, "mkdir": CategoryFileOps, "touch": CategoryFileOps,
	"cat": CategoryFileOps, "head": CategoryFileOps, "tail": CategoryFileOps,
	"chmod": CategoryFileOps, "ln": CategoryFileOps,

	"grep": CategorySearch, "rg": CategorySearch, "ag": CategorySearch,
	"find": CategorySearch, "fd": CategorySearch,
}

// go subcommands fan out across categories.
var goSubcommands = map[string]Category{
	"test":  CategoryTestRunner,
	"build": CategoryBuild,
	"vet":   CategoryBuild,
	"run":   CategoryBuild,
	"get":   CategoryPackageManager,
	"mod":   CategoryPackageManager,
}

// Classify assigns a command to a coarse category using fixed
// prefix/keyword rules.
func Classify(command string) Category {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return CategoryOther
	}
	head := baseName(fields[0])

	if head == "go" {
		if len(fields) > 1 {
			if cat, ok := goSubcommands[fields[1]]; ok {
				return cat
			}
		}
		return CategoryBuild
	}
	if cat, ok := categoryByHead[head]; ok {
		// npm test / yarn test is test running, not package management.
		if cat == CategoryPackageManager && len(fields) > 1 && fields[1] == "test" {
			return CategoryTestRunner
		}
		return cat
	}
	return CategoryOther
}

// Normalize reduces a command to a stable signature: the command head plus
// word-like subcommands and bare flag names, with paths, flag values, and
// other volatile arguments dropped.
func Normalize(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}

	sig := []string{baseName(fields[0])}
	var quote byte
	for _, f := range fields[1:] {
		if quote != 0 {
			// Inside a quoted argument: skip until the closing quote.
			if strings.IndexByte(f, quote) >= 0 {
				quote = 0
			}
			continue
		}
		if len(sig) >= 4 {
			break
		}
		switch {
		case f[0] == '\'' || f[0] == '"':
			if len(f) == 1 || f[len(f)-1] != f[0] {
				quote = f[0]
			}
		case strings.HasPrefix(f, "--"):
			// Keep the flag, drop any attached value.
			name, _, _ := strings.Cut(f, "=")
			sig = append(sig, name)
		case strings.HasPrefix(f, "-"):
			sig = append(sig, f)
		case isWord(f):
			sig = append(sig, f)
		default:
			// Paths, URLs, unquoted globs: volatile, skip.
		}
	}
	return strings.Join(sig, " ")
}

// BashKey classifies and normalizes a shell command into its pattern key,
// "bash:<category>:<signature>". Empty commands yield no key.
func BashKey(command string) string {
	sig := Normalize(command)
	if sig == "" {
		return ""
	}
	return BashPrefix + string(Classify(command)) + ":" + sig
}

func baseName(token string) string {
	if i := strings.LastIndexByte(token, '/'); i >= 0 {
		return token[i+1:]
	}
	return token
}

// isWord reports whether a token is a plain subcommand-like word: letters,
// digits, and interior hyphens only.
func isWord(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
