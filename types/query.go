package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type AskParams struct {
	Query    string `json:"query" validate:"required"`
	UseLocal bool   `json:"use_local"`
}

type ChatParams struct {
	Message string `json:"message"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *AskParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type AskResponse struct {
	Kind      AnswerKind `json:"kind"`
	Answer    string     `json:"answer"`
	Sources   []Source   `json:"sources"`
	Timestamp time.Time  `json:"timestamp"`
}

type Source struct {
	SourceID  string  `json:"source_id"`
	ChunkText string  `json:"chunk_text"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// ChatMessage is one avatar utterance: a short text span with its audio,
// lip-sync cues and presentation hints for the 3D front end.
type ChatMessage struct {
	Text             string      `json:"text"`
	Audio            string      `json:"audio"`
	Lipsync          LipsyncData `json:"lipsync"`
	FacialExpression string      `json:"facialExpression"`
	Animation        string      `json:"animation"`
}

type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// LipsyncData mirrors the Rhubarb JSON output the avatar consumes.
type LipsyncData struct {
	Metadata  LipsyncMetadata `json:"metadata"`
	MouthCues []MouthCue      `json:"mouthCues"`
}

type LipsyncMetadata struct {
	Duration float64 `json:"duration"`
}

type MouthCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value string  `json:"value"`
}
