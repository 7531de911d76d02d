package datafeed

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fenixinvest/fenix/Internal/types"
)

// ============================================================================
// ASSINANTES - resolucao de token de acesso
// ============================================================================

type AssinanteStore struct{}

func NewAssinanteStore() *AssinanteStore { return &AssinanteStore{} }

// BuscarPorToken resolves an access token to an active subscriber.
// Unknown or inactive tokens return (nil, nil).
func (s *AssinanteStore) BuscarPorToken(token string) (*types.Assinante, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	row := DB.QueryRow(`
		SELECT nome, token, produtos, ativo
		FROM assinantes
		WHERE token = $1 AND ativo = TRUE`, token)

	var a types.Assinante
	var produtos string
	if err := row.Scan(&a.Nome, &a.Token, &produtos, &a.Ativo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("consultar assinante: %w", err)
	}

	for _, p := range strings.Split(produtos, ",") {
		if p = strings.TrimSpace(p); p != "" {
			a.Produtos = append(a.Produtos, p)
		}
	}
	return &a, nil
}
