package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/gatekeeper/pkg/kvs"
)

// ErrNoProducts は一覧の結果が空であることを表す。
var ErrNoProducts = errors.New("catalog: no products available")

// counterKey は商品ID採番用カウンタのキー。
const counterKey = "product_id_counter"

// seedConcurrency はシード時の並行書き込み数の上限。
const seedConcurrency = 8

// productKey は商品ハッシュのキーを返す。
func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// Service は商品カタログサービス。
type Service struct {
	// store はカタログレコードの唯一の保存先。
	store kvs.Store
}

// NewService は新しい商品カタログサービスを生成する。
func NewService(store kvs.Store) *Service {
	return &Service{store: store}
}

// List はID 0からlimit-1までの商品を順に読み取り、存在するものだけを
// 返す。レコードのないIDは読み飛ばす。結果が空の場合はErrNoProductsを
// 返す。
func (s *Service) List(ctx context.Context, limit int) ([]Product, error) {
	products := make([]Product, 0, limit)
	for id := int64(0); id < int64(limit); id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := s.store.HGetAll(ctx, productKey(id))
		if err != nil {
			return nil, fmt.Errorf("商品の読み取りに失敗 (id=%d): %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}

		p, err := productFromFields(id, fields)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

// Create は商品を作成する。IDはバックエンドのアトミックなカウンタ
// インクリメントで採番され、採番済みのIDで保存したレコードを返す。
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	id, err := s.store.IncrEx(ctx, counterKey, 0)
	if err != nil {
		return Product{}, fmt.Errorf("商品IDの採番に失敗: %w", err)
	}

	p.ID = id
	if err := s.store.HSet(ctx, productKey(id), p.toFields()); err != nil {
		return Product{}, fmt.Errorf("商品の保存に失敗: %w", err)
	}
	return p, nil
}

// Seed はIDカウンタを0にリセットし、生成した商品でID 0からcount-1を
// 上書きする。書き込みはerrgroupで並行実行する。
func (s *Service) Seed(ctx context.Context, count int) error {
	if err := s.store.Set(ctx, counterKey, "0", 0); err != nil {
		return fmt.Errorf("IDカウンタのリセットに失敗: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for i := 0; i < count; i++ {
		id := int64(i)
		g.Go(func() error {
			p := generateProduct()
			if err := s.store.HSet(ctx, productKey(id), p.toFields()); err != nil {
				return fmt.Errorf("シード商品の保存に失敗 (id=%d): %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("%d件の商品をシードしました", count)
	return nil
}

// EnsureSeeded はシードデータが存在しない場合のみSeedを実行する。
// 存在判定には商品ID 1のレコードを使う。
func (s *Service) EnsureSeeded(ctx context.Context, count int) error {
	fields, err := s.store.HGetAll(ctx, productKey(1))
	if err != nil {
		return fmt.Errorf("シード有無の確認に失敗: %w", err)
	}
	if len(fields) > 0 {
		return nil
	}
	return s.Seed(ctx, count)
}
