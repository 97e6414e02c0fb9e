package entity

// NewsItem представляет новость из внешнего API.
// Используется только для отображения и не хранится в базе:
// список кешируется в Redis с TTL.
type NewsItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
}
