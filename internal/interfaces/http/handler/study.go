// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant-api/internal/application/document"
	"study-assistant-api/internal/application/study"
	"study-assistant-api/internal/interfaces/http/dto"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
)

// StudyHandler 学习助手处理器
type StudyHandler struct {
	explainer   *study.Explainer
	placeholder *study.PlaceholderGenerator
	pipeline    *document.Pipeline
}

// NewStudyHandler 创建学习助手处理器
func NewStudyHandler(
	explainer *study.Explainer,
	placeholder *study.PlaceholderGenerator,
	pipeline *document.Pipeline,
) *StudyHandler {
	return &StudyHandler{
		explainer:   explainer,
		placeholder: placeholder,
		pipeline:    pipeline,
	}
}

// Chat 生成主题讲解
// @Summary 主题讲解
// @Tags Study
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "主题"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/chat [post]
func (h *StudyHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Fail(c, err)
		return
	}

	res, err := h.explainer.Explain(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatResponse(res))
}

// GenerateImage 返回占位图地址
// @Summary 占位图
// @Tags Study
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "图片描述"
// @Success 200 {object} dto.GenerateImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/generate-image [post]
func (h *StudyHandler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Fail(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		dto.Fail(c, err)
		return
	}

	p := h.placeholder.Generate(c.Request.Context(), *req.Description)
	c.JSON(http.StatusOK, dto.GenerateImageResponse{
		ImageURL:    p.URL,
		Description: *req.Description,
	})
}

// GeneratePDF 渲染并下载 PDF，临时文件在响应发送后删除
// @Summary 生成 PDF
// @Tags Study
// @Accept json
// @Produce application/pdf
// @Param body body dto.GeneratePDFRequest true "文档内容"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-pdf [post]
func (h *StudyHandler) GeneratePDF(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GeneratePDFRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Fail(c, err)
		return
	}

	file, err := h.pipeline.Produce(ctx, req.ToEntity())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	defer func() {
		if err := file.Release(); err != nil {
			logger.Error(ctx, "failed to release document file", err, "path", file.Path())
		}
	}()

	c.Header("Content-Type", file.ContentType())
	c.FileAttachment(file.Path(), file.Name())
	metrics.DeliveryTotal.WithLabelValues("success").Inc()
}
