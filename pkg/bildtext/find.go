package bildtext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// imageExts are the raster formats the preparer can decode.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether path looks like a supported raster image.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// FindImages expands a mixed list of files and directories into image
// paths. Directories are walked recursively, skipping dot entries. File
// arguments pass through untouched so the caller can report missing ones
// individually.
func FindImages(args []string) ([]string, error) {
	found := []string{}

	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil || !fi.IsDir() {
			found = append(found, arg)
			continue
		}

		err = godirwalk.Walk(arg, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if path != arg && strings.HasPrefix(filepath.Base(path), ".") {
					return godirwalk.SkipThis
				}

				if !de.IsDir() && IsImage(path) {
					klog.V(1).Infof("found %s", path)
					found = append(found, path)
				}

				return nil
			},
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", arg, err)
		}
	}

	return found, nil
}
