package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/pkg/bind"
	"github.com/shashiranjanraj/enventory/pkg/response"
	"github.com/shashiranjanraj/enventory/pkg/validate"
)

const maxImageBytes = 2 << 20 // 2 MB

// ProductController handles catalog management and listing.
type ProductController struct {
	Catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// parseMultipartProduct reads a multipart form with product fields and an
// optional "image" file part.
func parseMultipartProduct(r *http.Request) (models.ProductInput, *services.ImageUpload, error) {
	var in models.ProductInput

	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		return in, nil, err
	}

	in.Name = r.FormValue("name")
	in.Description = r.FormValue("description")
	in.Size = r.FormValue("size")
	in.Color = r.FormValue("color")
	in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	in.Stock, _ = strconv.ParseInt(r.FormValue("stock"), 10, 64)

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, err
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		return in, nil, errImageTooLarge
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return in, nil, errNotAnImage
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return in, nil, err
	}

	return in, &services.ImageUpload{Filename: header.Filename, Data: data}, nil
}

var (
	errImageTooLarge = &imageError{"image exceeds the 2MB limit"}
	errNotAnImage    = &imageError{"uploaded file is not an image"}
)

type imageError struct{ msg string }

func (e *imageError) Error() string { return e.msg }

// AddProduct handles POST /product/addProduct. Accepts multipart form data
// (with optional image) or a plain JSON body.
func (c *ProductController) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	var image *services.ImageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		in, image, err = parseMultipartProduct(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errs := validate.Struct(&in); validate.HasErrors(errs) {
			response.ValidationError(w, errs)
			return
		}
	} else {
		if errs, err := bind.JSON(r, &in); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		} else if errs != nil {
			response.ValidationError(w, errs)
			return
		}
	}

	product, err := c.Catalog.AddProduct(r.Context(), in, image)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"product": product})
}

// UploadImage handles POST /product/uploadImage: stores a single image and
// returns its URL for later attachment.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		response.Error(w, http.StatusBadRequest, errImageTooLarge.Error())
		return
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		response.Error(w, http.StatusBadRequest, errNotAnImage.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := c.Catalog.UploadImage(r.Context(), services.ImageUpload{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"imageUrl": url})
}

// DelProduct handles DELETE /product/delProduct/{id}.
func (c *ProductController) DelProduct(w http.ResponseWriter, r *http.Request) {
	if err := c.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Product deleted")
}

// AllProducts handles GET /product/allProducts with page, limit and search
// query parameters.
func (c *ProductController) AllProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r)
	search := r.URL.Query().Get("search")

	result, err := c.Catalog.ListProducts(r.Context(), page, limit, search)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, result.Products, result.Pagination)
}
