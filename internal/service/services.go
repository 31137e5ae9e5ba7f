package service

import (
	"github.com/HushmKun/SeekerOfLight/internal/service/catalog"
	"github.com/HushmKun/SeekerOfLight/internal/service/progress"
)

type Collection struct {
	*catalog.CatalogService
	*progress.ProgressService
}
