package diff

import (
	"context"
	"fmt"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
	"github.com/diffdeck/diffdeck/internal/git"
)

// Special revision targets understood by ParseDiff.
const (
	// TargetWorking compares the working tree against the index.
	TargetWorking = "working"

	// TargetStaged compares the index against HEAD.
	TargetStaged = "staged"

	// TargetDot compares the working tree (staged and unstaged) against HEAD.
	TargetDot = "."
)

// Parser orchestrates block splitting, chunk parsing and file
// classification into a DiffResponse. It is stateless between calls except
// for the generated-status cache.
type Parser struct {
	// Strict makes a file block with no resolvable new path a hard parse
	// error. When false (the default) such blocks are dropped.
	Strict bool

	exec  git.Executor
	cache *statusCache
}

// NewParser creates a Parser using the given git executor.
func NewParser(ex git.Executor) *Parser {
	return &Parser{
		exec:  ex,
		cache: newStatusCache(generatedStatusTTL),
	}
}

// ParseDiff runs git for the given revision specs and parses the result.
// Failures surface as a descriptive error naming both specs.
func (p *Parser) ParseDiff(ctx context.Context, target, base string, ignoreWhitespace bool) (*DiffResponse, error) {
	diffArgs, label := buildDiffArgs(target, base, ignoreWhitespace)

	raw, err := p.exec.Run(ctx, diffArgs...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.GetCode(err),
			fmt.Sprintf("git diff failed for target %q against base %q", target, base), err)
	}

	// Summary uses the same comparison so records pair positionally with
	// the text blocks.
	summaryArgs := append([]string{"diff", "--numstat", "-z"}, diffArgs[1:]...)
	summaryOut, err := p.exec.Run(ctx, summaryArgs...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.GetCode(err),
			fmt.Sprintf("git diff summary failed for target %q against base %q", target, base), err)
	}

	return p.assemble(label, raw, git.ParseNumstatZ(summaryOut))
}

// ParsePatch parses raw unified diff text with no summary available.
// File status and line counts are derived purely from the parsed text.
func (p *Parser) ParsePatch(raw string) (*DiffResponse, error) {
	return p.assemble("(patch from stdin)", raw, nil)
}

// assemble pairs blocks with summary records and resolves each file.
func (p *Parser) assemble(label, raw string, summaries []git.SummaryEntry) (*DiffResponse, error) {
	blocks := splitBlocks(raw)

	files := make([]DiffFile, 0, len(blocks))
	for i, block := range blocks {
		var summary *git.SummaryEntry
		if i < len(summaries) {
			summary = &summaries[i]
		}

		file, ok := resolveFile(scanBlock(block), summary)
		if !ok {
			if p.Strict {
				return nil, apperrors.New(apperrors.CodeDiffBlockUnresolved,
					fmt.Sprintf("diff block %d has no resolvable path: %s", i, block.header))
			}
			// Lenient mode: drop the block, keep the parse.
			continue
		}

		file.IsGenerated = generatedByPath(file.Path)
		files = append(files, file)
	}

	return &DiffResponse{
		Commit:  label,
		Files:   files,
		IsEmpty: len(files) == 0,
	}, nil
}

// GeneratedStatus answers whether a file is generated, combining the
// cheap path signal with a lazy content check at the given ref.
// Results are cached per (ref, path) with a fixed TTL.
func (p *Parser) GeneratedStatus(ctx context.Context, filePath, ref string) GeneratedStatus {
	if ref == "" {
		ref = "HEAD"
	}
	key := ref + "\x00" + filePath

	if status, ok := p.cache.get(key); ok {
		return status
	}

	var status GeneratedStatus
	if generatedByPath(filePath) {
		status = GeneratedStatus{IsGenerated: true, Source: SourcePath}
	} else if generatedByContent(ctx, p.exec, ref, filePath) {
		status = GeneratedStatus{IsGenerated: true, Source: SourceContent}
	} else {
		// Includes the fail-open case where the blob could not be read.
		status = GeneratedStatus{IsGenerated: false, Source: SourcePath}
	}

	p.cache.put(key, status)
	return status
}

// InvalidateCache clears the generated-status cache wholesale.
// Called from the change-watcher's invalidation path.
func (p *Parser) InvalidateCache() {
	p.cache.clear()
}

// buildDiffArgs maps a target/base pair onto git diff arguments and a
// human-readable range label.
func buildDiffArgs(target, base string, ignoreWhitespace bool) ([]string, string) {
	args := []string{"diff"}
	if ignoreWhitespace {
		args = append(args, "-w")
	}

	switch target {
	case TargetWorking:
		return args, "Working directory (unstaged changes)"
	case TargetStaged:
		args = append(args, "--cached")
		return args, "Staged changes"
	case TargetDot:
		args = append(args, "HEAD")
		return args, "All uncommitted changes"
	}

	if base == "" {
		base = target + "^"
	}
	args = append(args, base, target)
	return args, fmt.Sprintf("%s..%s", base, target)
}
