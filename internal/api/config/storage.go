package config

import "strings"

// StorageConfig содержит настройки хранения отрендеренных страниц.
type StorageConfig struct {
	UploadDir    string `yaml:"upload_dir" env:"API_STORAGE_UPLOAD_DIR" env-default:"static/uploads"`
	PublicPath   string `yaml:"public_path" env:"API_STORAGE_PUBLIC_PATH" env-default:"/static/uploads"`
	PdftoppmPath string `yaml:"pdftoppm_path" env:"API_STORAGE_PDFTOPPM_PATH" env-default:"pdftoppm"`
	RenderDPI    int    `yaml:"render_dpi" env:"API_STORAGE_RENDER_DPI" env-default:"150"`
}

// GetPublicPath возвращает URL префикс без завершающего слэша.
func (c *StorageConfig) GetPublicPath() string {
	return strings.TrimRight(c.PublicPath, "/")
}
