package university_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ateneo-app/ateneo/university"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Courses(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/courses", r.URL.Path)
		json.NewEncoder(w).Encode([]university.Course{
			{ID: "c1", Code: "INF-101", Title: "Fondamenti di Informatica", Enrolled: true},
			{ID: "c2", Code: "MAT-201", Title: "Analisi II"},
		})
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	courses, err := client.Courses(context.Background())

	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "INF-101", courses[0].Code)
	assert.True(t, courses[0].Enrolled)
}

func TestClient_EnrollAndUnenroll(t *testing.T) {
	t.Parallel()
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/c1/enroll", r.URL.Path)
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	require.NoError(t, client.Enroll(context.Background(), "c1"))
	require.NoError(t, client.Unenroll(context.Background(), "c1"))

	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestClient_UpdateProfile(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var p university.Profile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		p.ID = "u1"
		json.NewEncoder(w).Encode(p)
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	updated, err := client.UpdateProfile(context.Background(), university.Profile{
		Name: "Giulia Rossi", Email: "giulia@example.edu", Degree: "Informatica", Year: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", updated.ID)
	assert.Equal(t, "Giulia Rossi", updated.Name)
}

func TestClient_Materials(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", r.URL.Query().Get("course_id"))
		json.NewEncoder(w).Encode([]university.Material{
			{ID: "m1", CourseID: "c1", Path: "slides/week1.pdf", UploadedAt: time.Now()},
		})
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	materials, err := client.Materials(context.Background(), "c1")

	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "slides/week1.pdf", materials[0].Path)
}

func TestClient_Download(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/materials/m1/download", r.URL.Path)
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	var buf bytes.Buffer
	require.NoError(t, client.Download(context.Background(), "m1", &buf))

	assert.Equal(t, "%PDF-1.7 fake", buf.String())
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "enrollment window closed"})
	}))
	t.Cleanup(srv.Close)

	client := university.New(srv.URL)
	err := client.Enroll(context.Background(), "c1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrollment window closed")
}

func TestFilterMaterials(t *testing.T) {
	t.Parallel()
	materials := []university.Material{
		{ID: "m1", Path: "slides/week1.pdf"},
		{ID: "m2", Path: "slides/week2.pdf"},
		{ID: "m3", Path: "exercises/sheet1.txt"},
		{ID: "m4", Path: "recordings/vod/lecture1.mp4"},
	}

	tests := []struct {
		name    string
		pattern string
		wantIDs []string
	}{
		{"empty pattern matches all", "", []string{"m1", "m2", "m3", "m4"}},
		{"pdf slides", "slides/*.pdf", []string{"m1", "m2"}},
		{"recursive pdf", "**/*.pdf", []string{"m1", "m2"}},
		{"nested recordings", "recordings/**", []string{"m4"}},
		{"no match", "*.docx", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := university.FilterMaterials(materials, tt.pattern)
			require.NoError(t, err)
			var ids []string
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterMaterials_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := university.FilterMaterials(nil, "[")
	assert.Error(t, err)
}
