package omie

// Customer is an entry of ListarClientes.
type Customer struct {
	Code        any    `json:"codigo_cliente_omie"`
	CompanyName string `json:"razao_social"`
	TradeName   string `json:"nome_fantasia"`
	Document    string `json:"cnpj_cpf"`
}

// Product is an entry of ListarProdutos.
type Product struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
	Family      string `json:"descricao_familia"`
}

// Order is an entry of ListarPedidos.
type Order struct {
	Header   OrderHeader   `json:"cabecalho"`
	Items    []OrderItem   `json:"det"`
	Register OrderRegister `json:"infoCadastro"`
}

// OrderHeader carries the order number and the customer reference.
type OrderHeader struct {
	Number       any `json:"numero_pedido"`
	CustomerCode any `json:"codigo_cliente"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	Product struct {
		Code        string `json:"codigo"`
		Description string `json:"descricao"`
	} `json:"produto"`
}

// OrderRegister holds the order bookkeeping flags.
type OrderRegister struct {
	Cancelled any `json:"cancelado"`
}

type request struct {
	Call      string `json:"call"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Param     []any  `json:"param"`
}

type pageParam struct {
	Page     int    `json:"pagina"`
	PageSize int    `json:"registros_por_pagina"`
	OnlyAPI  string `json:"apenas_importado_api"`
}

// fault is the error body Omie returns, usually with HTTP 500.
type fault struct {
	Code    string `json:"faultcode"`
	Message string `json:"faultstring"`
}

type listCall struct {
	path    string
	method  string
	listKey string
}

var (
	customersCall = listCall{path: "/geral/clientes/", method: "ListarClientes", listKey: "clientes_cadastro"}
	productsCall  = listCall{path: "/geral/produtos/", method: "ListarProdutos", listKey: "produto_servico_cadastro"}
	ordersCall    = listCall{path: "/produtos/pedido/", method: "ListarPedidos", listKey: "pedido_venda_produto"}
)
