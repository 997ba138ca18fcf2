package dto

import (
	"strings"

	"study-assistant-api/internal/domain/entity"
	apperrors "study-assistant-api/pkg/errors"
)

// ChatRequest 主题讲解请求
type ChatRequest struct {
	Topic      string `json:"topic"`
	NeedsImage bool   `json:"needs_image"`
}

func (r *ChatRequest) ToEntity() *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Topic:      r.Topic,
		NeedsImage: r.NeedsImage,
	}
}

// ChatResponse 主题讲解响应
type ChatResponse struct {
	Response         string `json:"response"`
	NeedsImage       bool   `json:"needs_image"`
	ImageDescription string `json:"image_description,omitempty"`
}

func ToChatResponse(res *entity.GenerationResult) *ChatResponse {
	return &ChatResponse{
		Response:         res.Text,
		NeedsImage:       res.NeedsImage,
		ImageDescription: res.ImageDescription,
	}
}

// GenerateImageRequest 占位图请求；description 缺失与空串语义不同
type GenerateImageRequest struct {
	Description *string `json:"description"`
}

// Validate description 必须出现，允许为空串
func (r *GenerateImageRequest) Validate() error {
	if r.Description == nil {
		return apperrors.Validation("description is required")
	}
	return nil
}

// GenerateImageResponse 占位图响应
type GenerateImageResponse struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// GeneratePDFRequest 文档生成请求
type GeneratePDFRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	Format   string `json:"format,omitempty"`
}

func (r *GeneratePDFRequest) ToEntity() *entity.DocumentRequest {
	return &entity.DocumentRequest{
		Content:  r.Content,
		ImageURL: strings.TrimSpace(r.ImageURL),
		Format:   entity.DocumentFormat(strings.ToLower(strings.TrimSpace(r.Format))),
	}
}
