package discovery_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/discovery"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
)

type recordingBackend struct {
	mu    sync.Mutex
	path  string
	body  []byte
	reply string
}

func (r *recordingBackend) Post(_ context.Context, path string, in, out any) error {
	r.mu.Lock()
	r.path = path
	r.body, _ = json.Marshal(in)
	reply := r.reply
	r.mu.Unlock()
	if reply == "" {
		reply = `{"documentos":[]}`
	}
	return json.Unmarshal([]byte(reply), out)
}

func managerFlow(t *testing.T, b discovery.Backend) *discovery.Flow {
	t.Helper()

	sub := subject()
	sub.Manager = true
	sub.Client = "CL-7"
	sub.TypeName = "Contrato"
	f, err := discovery.New(document.CategoryGeneric, sub, b)
	require.NoError(t, err)
	return f
}

func TestManagerSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("type name is mandatory", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{}
		_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{})
		assert.ErrorIs(t, err, discovery.ErrTypeNameRequired)
		assert.Empty(t, b.path, "validation failure must not hit the network")
	})

	t.Run("malformed tax id rejected locally", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{}
		_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
			TypeName: "Contrato",
			CPF:      "123.456",
		})
		assert.ErrorIs(t, err, discovery.ErrCPFRequired)
		assert.Empty(t, b.path)
	})

	t.Run("tax id or registration must be given", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{}
		_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
			TypeName: "Contrato",
		})
		assert.ErrorIs(t, err, discovery.ErrIdentityRequired)
		assert.Empty(t, b.path)
	})

	t.Run("registration alone is enough", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{reply: `{"documentos":[{"id_documento":481,"anomes":"2024-03","tipodedoc":"Contrato"}]}`}
		refs, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
			TypeName:     "Contrato",
			TemplateID:   "77",
			Registration: "999",
		})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "/documents/search", b.path)
		assert.Equal(t, "481", refs[0].DocumentID)
		assert.Equal(t, "77", refs[0].TemplateID)

		body := string(b.body)
		assert.Contains(t, body, `"id_template":77`)
		assert.Contains(t, body, `"nome":"matricula","valor":"999"`)
		assert.Contains(t, body, `"nome":"colaborador","valor":""`)
		assert.NotContains(t, body, `"cpf"`)
	})

	t.Run("tax id rides at the top level and as a filter", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{}
		_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
			TypeName: "Contrato",
			CPF:      "529.982.247-25",
		})
		require.NoError(t, err)

		body := string(b.body)
		assert.Contains(t, body, `"cpf":"52998224725"`)
		assert.Contains(t, body, `"nome":"colaborador","valor":"52998224725"`)
	})

	t.Run("receipt aliases route to the receipts endpoint", func(t *testing.T) {
		t.Parallel()

		b := &recordingBackend{}
		_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
			TypeName: "Recibo Vale Transporte",
			CPF:      "529.982.247-25",
		})
		require.NoError(t, err)
		assert.Equal(t, "/documents/search/recibos", b.path)
	})

	t.Run("termination aliases route to the year variant", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"TRCT", "Termo de Rescisão", "Informe de Rendimento"} {
			b := &recordingBackend{}
			_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
				TypeName: name,
				CPF:      "529.982.247-25",
			})
			require.NoError(t, err)
			assert.Equal(t, "/documents/search/informetrct", b.path, name)
		}
	})

	t.Run("period accepts any spelling and filters server-side", func(t *testing.T) {
		t.Parallel()

		for input, want := range map[string]string{
			"03/2024": `"anomes":"2024-03"`,
			"202403":  `"anomes":"2024-03"`,
			"2024-03": `"anomes":"2024-03"`,
			"":        `"anomes":""`,
		} {
			b := &recordingBackend{}
			_, err := managerFlow(t, b).ManagerSearch(ctx, discovery.ManagerQuery{
				TypeName:     "Contrato",
				Registration: "999",
				Period:       input,
			})
			require.NoError(t, err)
			assert.Contains(t, string(b.body), want, input)
			assert.Contains(t, string(b.body), `"campo_anomes":"anomes"`)
		}
	})
}
