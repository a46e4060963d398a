package controller

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
)

var imageFields = []string{"image1", "image2", "image3"}

type ProductAPI interface {
	AddProduct(ctx context.Context, who *service.Identity, in dto.ProductInput, files []*service.ImageFile) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	Get(ctx context.Context, idHex string) (*model.Product, error)
	Remove(ctx context.Context, who *service.Identity, idHex string) (*model.Product, error)
	FarmerProducts(ctx context.Context, who *service.Identity) ([]*model.Product, error)
	UpdateStock(ctx context.Context, who *service.Identity, idHex string, stock *int) (*model.Product, error)
}

type ProductController struct {
	Service ProductAPI
}

func NewProductController(s ProductAPI) *ProductController {
	return &ProductController{Service: s}
}

// POST /api/product/addproduct (multipart)
func (ctl *ProductController) Add(c *gin.Context) {
	var in dto.ProductInput
	if err := c.ShouldBind(&in); err != nil {
		respondError(c, errBadBody)
		return
	}

	files := make([]*service.ImageFile, len(imageFields))
	for i, field := range imageFields {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		files[i] = formImage(fh)
	}

	p, err := ctl.Service.AddProduct(c.Request.Context(), identity(c), in, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product added successfully", "product": p})
}

func formImage(fh *multipart.FileHeader) *service.ImageFile {
	return &service.ImageFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func (ctl *ProductController) List(c *gin.Context) {
	products, err := ctl.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product list", "products": products})
}

func (ctl *ProductController) Single(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	p, err := ctl.Service.Get(c.Request.Context(), req.Resolve())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product found successfully", "product": p})
}

func (ctl *ProductController) Remove(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	p, err := ctl.Service.Remove(c.Request.Context(), identity(c), req.Resolve())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed successfully", "product": p})
}

func (ctl *ProductController) FarmerProducts(c *gin.Context) {
	products, err := ctl.Service.FarmerProducts(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (ctl *ProductController) UpdateStock(c *gin.Context) {
	var req dto.UpdateStockRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	p, err := ctl.Service.UpdateStock(c.Request.Context(), identity(c), req.ProductID, req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stock updated successfully", "product": p})
}
