package entity

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions: расширения, которые берутся из входного каталога
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// OverlaySuffix добавляется к имени файла с отмеченными пятнами
const OverlaySuffix = "_counted"

// OverlayPath возвращает путь оверлея «<имя>_counted<расширение>» в каталоге dir
func OverlayPath(dir, inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+OverlaySuffix+ext)
}

// ImageName возвращает имя файла без расширения
func ImageName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasExtension проверяет расширение без учёта регистра
func HasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
