package installer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/installer"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestFactory_ForProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	opener := mocks.NewMockIndexOpener(ctrl)
	project := &domain.Project{Root: t.TempDir(), Index: domain.IndexConfig{Path: "/srv/index"}}

	opener.EXPECT().Open(project.Index).Return(mocks.NewMockArtifactSource(ctrl), nil)

	inst, err := installer.NewFactory(opener, mocks.NewMockLogger(ctrl)).ForProject(project)
	require.NoError(t, err)
	assert.NotNil(t, inst)
}

func TestFactory_ForProject_BadIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	opener := mocks.NewMockIndexOpener(ctrl)
	opener.EXPECT().Open(gomock.Any()).Return(nil, domain.ErrInvalidConfig)

	_, err := installer.NewFactory(opener, mocks.NewMockLogger(ctrl)).ForProject(&domain.Project{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
