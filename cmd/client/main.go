// 命令行客户端：浏览目录、维护本地购物车并提交订单。
// 购物车保存在本地文件中，只有登录与 API 调用会产生网络请求。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	cartapp "github.com/wyfcoding/medsupply/internal/cart/application"
	cartdomain "github.com/wyfcoding/medsupply/internal/cart/domain"
	"github.com/wyfcoding/medsupply/internal/cart/infrastructure/localfile"
)

const defaultServer = "http://127.0.0.1:8080"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	app, err := newClientApp()
	if err != nil {
		fatal(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		err = app.login(ctx, args)
	case "products":
		err = app.listProducts(ctx, args)
	case "cart":
		err = app.showCart(ctx)
	case "add":
		err = app.addToCart(ctx, args)
	case "remove":
		err = app.removeFromCart(ctx, args)
	case "set":
		err = app.setQuantity(ctx, args)
	case "clear":
		err = app.clearCart(ctx)
	case "checkout":
		err = app.checkout(ctx, args)
	case "orders":
		err = app.listOrders(ctx)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: client <command> [flags]

Commands:
  login     -email <email> -password <password>
  products  [-search <text>] [-category <id>]
  cart      show local cart contents
  add       -product <id> -qty <n>
  remove    -product <id>
  set       -product <id> -qty <n>
  clear     empty the local cart
  checkout  [-notes <text>]
  orders    list own orders`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// clientApp 客户端状态：HTTP 客户端、本地购物车与会话令牌
type clientApp struct {
	http      *resty.Client
	cart      *cartapp.CartApplicationService
	dataDir   string
	tokenPath string
}

func newClientApp() (*clientApp, error) {
	server := os.Getenv("MEDSUPPLY_SERVER")
	if server == "" {
		server = defaultServer
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".medsupply")

	store := localfile.NewStore(dataDir)
	cart, err := cartapp.NewCartApplicationService(context.Background(), store)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(server+"/api/v1").
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")

	app := &clientApp{
		http:      client,
		cart:      cart,
		dataDir:   dataDir,
		tokenPath: filepath.Join(dataDir, "session.token"),
	}
	if token, err := os.ReadFile(app.tokenPath); err == nil {
		client.SetAuthToken(strings.TrimSpace(string(token)))
	}
	return app, nil
}

// apiBody 服务端统一响应结构
type apiBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call 调用 API 并解包统一响应，out 为 nil 时丢弃数据
func (a *clientApp) call(ctx context.Context, method, path string, payload, out any) error {
	req := a.http.R().SetContext(ctx)
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var body apiBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("unexpected response (%s): %s", resp.Status(), resp.String())
	}
	if resp.IsError() {
		return fmt.Errorf("%s", body.Message)
	}
	if out != nil && len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (a *clientApp) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
	}
	err := a.call(ctx, "POST", "/auth/login", map[string]string{
		"email":    *email,
		"password": *password,
	}, &result)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.dataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, []byte(result.Token), 0o600); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	fmt.Printf("Connecté en tant que %s (%s)\n", result.User.Name, result.User.Role)
	return nil
}

// productView 目录展示所需的字段
type productView struct {
	ID        uint    `json:"ID"`
	Name      string  `json:"name"`
	Reference *string `json:"reference"`
	Price     string  `json:"price"`
	Stock     int     `json:"stock"`
	Category  *struct {
		Name string `json:"name"`
	} `json:"category"`
}

func (a *clientApp) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	search := fs.String("search", "", "search text")
	category := fs.String("category", "", "category id")
	fs.Parse(args)

	path := "/products"
	var params []string
	if *search != "" {
		params = append(params, "search="+*search)
	}
	if *category != "" {
		params = append(params, "category_id="+*category)
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var products []productView
	if err := a.call(ctx, "GET", path, nil, &products); err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("Aucun produit disponible")
		return nil
	}
	for _, p := range products {
		ref := ""
		if p.Reference != nil {
			ref = *p.Reference
		}
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Printf("%4d  %-40s  %-12s  %8s €  stock %d  [%s]\n",
			p.ID, p.Name, ref, p.Price, p.Stock, category)
	}
	return nil
}

func (a *clientApp) showCart(_ context.Context) error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Panier vide")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%4d  %-40s  x%d  (%s €)\n", item.ProductID, item.Label, item.Quantity, item.Price)
	}
	return nil
}

func (a *clientApp) addToCart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	productID := fs.Uint("product", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)
	if *productID == 0 {
		return fmt.Errorf("product id is required")
	}
	if *qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	// 拉取商品快照以获得标签与单价，本地不校验库存
	var product productView
	if err := a.call(ctx, "GET", fmt.Sprintf("/products/%d", *productID), nil, &product); err != nil {
		return err
	}

	if err := a.cart.Add(ctx, cartdomain.Item{
		ProductID: product.ID,
		Quantity:  *qty,
		Price:     product.Price,
		Label:     product.Name,
	}); err != nil {
		return err
	}
	fmt.Printf("Ajouté: %s x%d\n", product.Name, *qty)
	return nil
}

func (a *clientApp) removeFromCart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	productID := fs.Uint("product", 0, "product id")
	fs.Parse(args)
	if *productID == 0 {
		return fmt.Errorf("product id is required")
	}
	return a.cart.Remove(ctx, uint(*productID))
}

func (a *clientApp) setQuantity(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	productID := fs.Uint("product", 0, "product id")
	qty := fs.Int("qty", 0, "quantity")
	fs.Parse(args)
	if *productID == 0 {
		return fmt.Errorf("product id is required")
	}
	return a.cart.SetQuantity(ctx, uint(*productID), *qty)
}

func (a *clientApp) clearCart(ctx context.Context) error {
	return a.cart.Clear(ctx)
}

func (a *clientApp) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	notes := fs.String("notes", "", "order notes")
	fs.Parse(args)

	items := a.cart.Items()
	if len(items) == 0 {
		return fmt.Errorf("le panier est vide")
	}

	type line struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	lines := make([]line, len(items))
	for i, item := range items {
		lines[i] = line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var order struct {
		OrderNo string `json:"order_no"`
	}
	err := a.call(ctx, "POST", "/orders", map[string]any{
		"items": lines,
		"notes": *notes,
	}, &order)
	if err != nil {
		return err
	}

	// 提交成功后才清空本地购物车
	if err := a.cart.Clear(ctx); err != nil {
		return fmt.Errorf("order placed (%s) but failed to clear cart: %w", order.OrderNo, err)
	}
	fmt.Printf("Commande créée: %s\n", order.OrderNo)
	return nil
}

func (a *clientApp) listOrders(ctx context.Context) error {
	var orders []struct {
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
		Items   []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	if err := a.call(ctx, "GET", "/orders", nil, &orders); err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("Aucune commande")
		return nil
	}
	for _, o := range orders {
		total := 0
		for _, item := range o.Items {
			total += item.Quantity
		}
		fmt.Printf("%-24s  %-16s  %d article(s)\n", o.OrderNo, o.Status, total)
	}
	return nil
}
