package contracts

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/stretchr/testify/require"
)

func testContractFiles(t *testing.T, name string) (nefBytes, manifestBytes []byte) {
	f, err := nef.NewFile([]byte{1, 2, 3})
	require.NoError(t, err)
	nefBytes, err = f.Bytes()
	require.NoError(t, err)

	manifestBytes, err = json.Marshal(manifest.NewManifest(name))
	require.NoError(t, err)

	return
}

func TestRead(t *testing.T) {
	_fs := fstest.MapFS{}

	_, err := Read(_fs)
	require.Error(t, err)

	for _, dir := range vaultContracts {
		nefBytes, manifestBytes := testContractFiles(t, dir)
		_fs[dir+"/"+nefName] = &fstest.MapFile{Data: nefBytes}
		_fs[dir+"/"+manifestName] = &fstest.MapFile{Data: manifestBytes}
	}

	cs, err := Read(_fs)
	require.NoError(t, err)
	require.Len(t, cs, len(vaultContracts))
	require.Equal(t, wrapGASDir, cs[0].Manifest.Name)
	require.Equal(t, vaultDir, cs[1].Manifest.Name)
}

func TestReadInvalid(t *testing.T) {
	nefBytes, manifestBytes := testContractFiles(t, vaultDir)

	t.Run("broken NEF", func(t *testing.T) {
		_fs := fstest.MapFS{
			vaultDir + "/" + nefName:      &fstest.MapFile{Data: nefBytes[:len(nefBytes)-1]},
			vaultDir + "/" + manifestName: &fstest.MapFile{Data: manifestBytes},
		}

		_, err := readContractFromDir(_fs, vaultDir)
		require.ErrorIs(t, err, errInvalidNEF)
	})

	t.Run("broken manifest", func(t *testing.T) {
		_fs := fstest.MapFS{
			vaultDir + "/" + nefName:      &fstest.MapFile{Data: nefBytes},
			vaultDir + "/" + manifestName: &fstest.MapFile{Data: manifestBytes[:len(manifestBytes)-1]},
		}

		_, err := readContractFromDir(_fs, vaultDir)
		require.ErrorIs(t, err, errInvalidManifest)
	})

	t.Run("missing manifest", func(t *testing.T) {
		_fs := fstest.MapFS{
			vaultDir + "/" + nefName: &fstest.MapFile{Data: nefBytes},
		}

		_, err := readContractFromDir(_fs, vaultDir)
		require.Error(t, err)
	})
}
