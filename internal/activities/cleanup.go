package activities

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/yourorg/market-metrics/internal/types"
)

// CleanupScratch removes a run's scratch subdirectory (badger seen-sets).
// Safe to call when the directory does not exist.
func (a *Activities) CleanupScratch(ctx context.Context, p types.CleanupParams) error {
	sub := filepath.Clean(p.ScratchSubdir)
	if sub == "." || sub == "" || sub == "/" || sub == ".." {
		// Never delete the scratch root or anything above it.
		return errors.New("invalid scratch subdir for cleanup")
	}
	return os.RemoveAll(filepath.Join(a.cfg.ScratchDir, sub))
}
