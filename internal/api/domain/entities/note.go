package entities

import (
	"encoding/json"
	"errors"
	"time"
)

// Ошибки домена заметок.
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrPageNotFound = errors.New("page not found")
)

// BackgroundType - тип фона страницы.
type BackgroundType string

// Поддерживаемые типы фона.
const (
	BackgroundPlain BackgroundType = "plain"
	BackgroundRuled BackgroundType = "ruled"
	BackgroundGrid  BackgroundType = "grid"
	BackgroundImage BackgroundType = "image"
)

// Valid сообщает, известен ли тип фона.
func (b BackgroundType) Valid() bool {
	switch b {
	case BackgroundPlain, BackgroundRuled, BackgroundGrid, BackgroundImage:
		return true
	default:
		return false
	}
}

// EmptyOverlay - оверлей новой страницы.
var EmptyOverlay = json.RawMessage(`{}`)

// Note представляет заметку пользователя. Pages упорядочены по PageNumber.
type Note struct {
	ID        int64
	Title     string
	OwnerID   int64
	CreatedAt time.Time
	Pages     []Page
}

// Page - страница заметки. Номера страниц начинаются с 1 и уникальны в пределах заметки.
type Page struct {
	ID             int64
	NoteID         int64
	PageNumber     int
	Content        string
	BackgroundType BackgroundType
	BackgroundURL  *string
	OverlayData    json.RawMessage
}

// NewBlankPage создает первую страницу заметки без документа.
func NewBlankPage(background BackgroundType) Page {
	return Page{
		PageNumber:     1,
		BackgroundType: background,
		OverlayData:    EmptyOverlay,
	}
}

// NewImagePages создает по одной image-странице на каждый URL, нумерация с 1.
func NewImagePages(urls []string) []Page {
	pages := make([]Page, 0, len(urls))
	for i, u := range urls {
		url := u
		pages = append(pages, Page{
			PageNumber:     i + 1,
			BackgroundType: BackgroundImage,
			BackgroundURL:  &url,
			OverlayData:    EmptyOverlay,
		})
	}
	return pages
}
