package google

// Request and response shapes for the subset of the Google Business Profile
// APIs the handlers call. Field names follow the provider's wire format.

type Account struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName,omitempty"`
	Type        string `json:"type,omitempty"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type PhoneNumbers struct {
	PrimaryPhone string `json:"primaryPhone,omitempty"`
}

type PostalAddress struct {
	RegionCode   string   `json:"regionCode,omitempty"`
	AddressLines []string `json:"addressLines,omitempty"`
}

type Category struct {
	DisplayName string `json:"displayName,omitempty"`
}

type Categories struct {
	PrimaryCategory *Category `json:"primaryCategory,omitempty"`
}

type TimePeriod struct {
	OpenDay   string `json:"openDay,omitempty"`
	OpenTime  string `json:"openTime,omitempty"`
	CloseDay  string `json:"closeDay,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
}

type RegularHours struct {
	Periods []TimePeriod `json:"periods,omitempty"`
}

type Location struct {
	Name              string         `json:"name,omitempty"`
	Title             string         `json:"title,omitempty"`
	PhoneNumbers      *PhoneNumbers  `json:"phoneNumbers,omitempty"`
	WebsiteURI        string         `json:"websiteUri,omitempty"`
	StorefrontAddress *PostalAddress `json:"storefrontAddress,omitempty"`
	Categories        *Categories    `json:"categories,omitempty"`
	RegularHours      *RegularHours  `json:"regularHours,omitempty"`
}

type CallToAction struct {
	ActionType string `json:"actionType,omitempty"`
	URL        string `json:"url,omitempty"`
}

type MediaItem struct {
	MediaFormat string `json:"mediaFormat,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

type TimeInterval struct {
	StartDate DateTime `json:"startDate,omitempty"`
	EndDate   DateTime `json:"endDate,omitempty"`
}

type DateTime struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Day     int `json:"day"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type LocalPostEvent struct {
	Title    string        `json:"title,omitempty"`
	Schedule *TimeInterval `json:"schedule,omitempty"`
}

type LocalPost struct {
	Name         string          `json:"name,omitempty"`
	LanguageCode string          `json:"languageCode,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	CallToAction *CallToAction   `json:"callToAction,omitempty"`
	Media        []MediaItem     `json:"media,omitempty"`
	Event        *LocalPostEvent `json:"event,omitempty"`
	TopicType    string          `json:"topicType,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
