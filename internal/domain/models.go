package domain

import "time"

// Kind - явный дискриминант варианта поста.
type Kind string

const (
	KindPost         Kind = "post"
	KindNormalRepost Kind = "normalRepost"
	KindQuoteRepost  Kind = "quoteRepost"
)

// Author - автор поста или комментария.
type Author struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Badge       string `json:"badge,omitempty"`
}

// Stats - счётчики поста.
type Stats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Reposts  int `json:"reposts"`
}

// Interactions - флаги относительно текущего зрителя.
type Interactions struct {
	Liked      bool `json:"liked"`
	Reposted   bool `json:"reposted"`
	Bookmarked bool `json:"bookmarked"`
}

// Header - поля, общие для всех вариантов поста.
type Header struct {
	ID        string
	Author    Author
	CreatedAt time.Time
}

func (h Header) Head() Header { return h }

// Body - собственное содержимое и счётчики поста.
// Есть только у оригиналов и цитат: у обычного репоста его нет на уровне типа.
type Body struct {
	Content      string
	Media        []string
	GifURL       string
	Poll         *Poll
	Stats        Stats
	Interactions Interactions
}

func (b Body) Payload() Body { return b }

// Post - сумма трёх вариантов: Original, NormalRepost, QuoteRepost.
type Post interface {
	Head() Header
	Kind() Kind
}

// Displayable - пост, у которого есть собственное содержимое и счётчики.
type Displayable interface {
	Post
	Payload() Body
}

// Original - обычный пост.
type Original struct {
	Header
	Body
}

func (Original) Kind() Kind { return KindPost }

// NormalRepost - маркер "X сделал репост". Содержимое и счётчики читаются
// только через оригинал.
type NormalRepost struct {
	Header
	OriginalPostID string
	// Original - снимок оригинала, если хранилище подгрузило его вместе с репостом.
	Original *Original
}

func (NormalRepost) Kind() Kind { return KindNormalRepost }

// QuoteRepost - самостоятельный пост, цитирующий другой.
type QuoteRepost struct {
	Header
	Body
	OriginalPostID string
	// QuotedPost - замороженный снимок цитируемого поста, только для отображения.
	QuotedPost *Original
}

func (QuoteRepost) Kind() Kind { return KindQuoteRepost }

// Comment - комментарий к посту. Вложенности нет.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Media     []string  `json:"media,omitempty"`
	GifURL    string    `json:"gifUrl,omitempty"`
	Poll      *Poll     `json:"poll,omitempty"`
	Likes     int       `json:"likes"`
	UserLiked bool      `json:"userLiked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Poll - опрос с одним выбором.
type Poll struct {
	Options []string `json:"options"`
	// Votes - количество голосов по индексу варианта.
	Votes map[int]int `json:"votes"`
	// UserVote - выбор текущего зрителя.
	UserVote   *int      `json:"userVote,omitempty"`
	IsFinished bool      `json:"isFinished"`
	ExpiresAt  time.Time `json:"expiresAt"`
	// Ballots - записанные выборы всех проголосовавших. nil у снимка,
	// полученного клиентом: тогда выбор зрителя берётся из UserVote.
	Ballots map[string]int `json:"-"`
}

// Closed сообщает, закрыт ли опрос на момент now. Нулевой ExpiresAt означает
// опрос без срока.
func (p Poll) Closed(now time.Time) bool {
	if p.IsFinished {
		return true
	}
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Clone возвращает копию опроса, не разделяющую карты и срезы с исходным.
func (p Poll) Clone() Poll {
	c := p
	c.Options = append([]string(nil), p.Options...)
	c.Votes = make(map[int]int, len(p.Votes))
	for k, v := range p.Votes {
		c.Votes[k] = v
	}
	if p.Ballots != nil {
		c.Ballots = make(map[string]int, len(p.Ballots))
		for k, v := range p.Ballots {
			c.Ballots[k] = v
		}
	}
	if p.UserVote != nil {
		v := *p.UserVote
		c.UserVote = &v
	}
	return c
}

// ContentType - тип контента, на который жалуются.
type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentComment ContentType = "comment"
)

// ReportReason - причина жалобы.
type ReportReason string

const (
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonHateSpeech           ReportReason = "hate_speech"
	ReasonMisinformation       ReportReason = "misinformation"
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonOther                ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonHateSpeech, ReasonMisinformation, ReasonInappropriateContent, ReasonOther:
		return true
	}
	return false
}

// Bookmark - закладка зрителя. PostID всегда указывает на пост с содержимым:
// закладка на обычный репост ставится его оригиналу.
type Bookmark struct {
	Viewer    string    `json:"viewer"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Mute - зритель скрыл посты цели из ленты.
type Mute struct {
	Viewer    string    `json:"viewer"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// Block - зритель полностью скрыл контент цели.
type Block struct {
	Viewer    string    `json:"viewer"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report - запись журнала жалоб. Журнал только дополняется.
type Report struct {
	ID           string       `json:"id"`
	Reporter     string       `json:"reporter"`
	ContentType  ContentType  `json:"contentType"`
	ContentID    string       `json:"contentId"`
	TargetAuthor string       `json:"targetAuthor"`
	Reason       ReportReason `json:"reason"`
	Description  string       `json:"description,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// NewPoll создаёт пустой опрос с журналом голосов.
func NewPoll(options []string, expiresAt time.Time) Poll {
	return Poll{
		Options:   append([]string(nil), options...),
		Votes:     map[int]int{},
		Ballots:   map[string]int{},
		ExpiresAt: expiresAt,
	}
}
