package models

// FilterClause is one operator/value pair produced by the query translator.
type FilterClause struct {
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// GuideFilter is the structured guide search produced from free text or
// sent directly by clients. Keys are whitelisted guide fields.
type GuideFilter struct {
	Name            *FilterClause  `json:"user.name,omitempty"`
	Location        *FilterClause  `json:"location,omitempty"`
	Country         *FilterClause  `json:"user.country,omitempty"`
	Languages       *FilterClause  `json:"languages,omitempty"`
	RatingAvg       []FilterClause `json:"ratingAvg,omitempty"`
	PricePerDay     []FilterClause `json:"pricePerDay,omitempty"`
	Vehicle         *FilterClause  `json:"vehicle,omitempty"`
	ExperienceYears *FilterClause  `json:"experienceYears,omitempty"`
	Specialties     *FilterClause  `json:"specialties,omitempty"`
	Favourites      *FilterClause  `json:"favourites.name,omitempty"`
}

// AIRequest is the payload of POST /ai/answer.
type AIRequest struct {
	UserID  string `json:"-"`
	Message string `json:"message" binding:"required"`
}

// AITranslation is the structured answer of the language model.
type AITranslation struct {
	Filter       GuideFilter `json:"mongo_filter"`
	ResponseText string      `json:"response_text"`
}

// AIResponse is what the AI handler returns to the client.
type AIResponse struct {
	Response AITranslation  `json:"response"`
	Guides   Page[GuideDTO] `json:"guides"`
}

// AITurn is one remembered exchange of a user's conversation.
type AITurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// AIContext is the per-user conversation state kept in the cache.
type AIContext struct {
	Turns []AITurn `json:"turns"`
}
