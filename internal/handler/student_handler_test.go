package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-records-api/internal/dto"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type fakeStudentSrv struct {
	items     []dto.StudentResponse
	err       error
	created   dto.StudentRequest
	updatedID string
	deletedID string
}

func (f *fakeStudentSrv) List(context.Context) ([]dto.StudentResponse, error) {
	return f.items, f.err
}

func (f *fakeStudentSrv) Get(_ context.Context, id string) (*dto.StudentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.StudentResponse{ID: id}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, req dto.StudentRequest) (*dto.StudentResponse, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.StudentResponse{ID: "s-1", AdmissionNumber: req.AdmissionNumber}, nil
}

func (f *fakeStudentSrv) Update(_ context.Context, id string, req dto.StudentRequest) (*dto.StudentResponse, error) {
	f.updatedID = id
	return &dto.StudentResponse{ID: id, AdmissionNumber: req.AdmissionNumber}, f.err
}

func (f *fakeStudentSrv) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

func TestStudentHandlerListReportsTotal(t *testing.T) {
	srv := &fakeStudentSrv{items: []dto.StudentResponse{{ID: "a"}, {ID: "b"}}}
	h := NewStudentHandler(srv)

	rec := perform(t, http.MethodGet, "/students", "/students", "", nil, h.List)

	assertStatus(t, rec, http.StatusOK)
	assert.EqualValues(t, 2, decode(t, rec).Meta["total"])
}

func TestStudentHandlerCreateRejectsMalformedBody(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{})

	rec := perform(t, http.MethodPost, "/students", "/students", "{", nil, h.Create)

	assertStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, rec).Error.Code)
}

func TestStudentHandlerCreate(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv)

	rec := perform(t, http.MethodPost, "/students", "/students", `{"firstName":"Ada","lastName":"Lovelace","email":"ada@test.com","admissionNumber":"STU100"}`, nil, h.Create)

	assertStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "STU100", srv.created.AdmissionNumber)
	var body dto.StudentResponse
	decodeData(t, rec, &body)
	assert.Equal(t, "s-1", body.ID)
}

func TestStudentHandlerGetMapsNotFound(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")})

	rec := perform(t, http.MethodGet, "/students/:id", "/students/missing", "", nil, h.Get)

	assertStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "student not found", decode(t, rec).Error.Message)
}

func TestStudentHandlerUpdateAndDelete(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv)

	rec := perform(t, http.MethodPut, "/students/:id", "/students/s-9", `{"admissionNumber":"STU9"}`, nil, h.Update)
	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "s-9", srv.updatedID)

	rec = perform(t, http.MethodDelete, "/students/:id", "/students/s-9", "", nil, h.Delete)
	assertStatus(t, rec, http.StatusNoContent)
	assert.Equal(t, "s-9", srv.deletedID)
}
