package asset

// DefaultRegistry returns a registry with the assets Binance P2P lists and
// the fiat currencies most often paired with them.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Crypto
	r.Register(New("USDT", "Tether", 2, KindCrypto))
	r.Register(New("USDC", "USD Coin", 2, KindCrypto))
	r.Register(New("FDUSD", "First Digital USD", 2, KindCrypto))
	r.Register(New("BTC", "Bitcoin", 8, KindCrypto))
	r.Register(New("ETH", "Ethereum", 8, KindCrypto))
	r.Register(New("BNB", "BNB", 8, KindCrypto))

	// Fiat
	r.Register(New("GBP", "British Pound", 2, KindFiat))
	r.Register(New("PKR", "Pakistani Rupee", 2, KindFiat))
	r.Register(New("USD", "US Dollar", 2, KindFiat))
	r.Register(New("EUR", "Euro", 2, KindFiat))
	r.Register(New("INR", "Indian Rupee", 2, KindFiat))
	r.Register(New("NGN", "Nigerian Naira", 2, KindFiat))
	r.Register(New("TRY", "Turkish Lira", 2, KindFiat))
	r.Register(New("AED", "UAE Dirham", 2, KindFiat))
	r.Register(New("ARS", "Argentine Peso", 2, KindFiat))
	r.Register(New("BRL", "Brazilian Real", 2, KindFiat))

	return r
}
